package main

import (
	"fmt"
	"os"
)

func main() {
	err := Execute()
	_ = Log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:")+" "+err.Error())
		os.Exit(1)
	}
}
