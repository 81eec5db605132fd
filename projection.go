package main

import (
	"time"

	"goPayeCalculator/paye"
)

// ProjectionMonth is one month of a salary projection with running totals
type ProjectionMonth struct {
	Month int    `json:"month"`
	Label string `json:"label"`

	Gross float64 `json:"gross"`
	Net   float64 `json:"net"`
	PAYE  float64 `json:"paye"`
	NSSF  float64 `json:"nssf"`

	CumulativeGross float64 `json:"cumulative_gross"`
	CumulativeNet   float64 `json:"cumulative_net"`
	CumulativePAYE  float64 `json:"cumulative_paye"`
	CumulativeNSSF  float64 `json:"cumulative_nssf"`
}

// ProjectMonths repeats a monthly result for the given number of months
// starting at start, accumulating gross, net, PAYE and NSSF. The salary and
// elections are assumed constant; months <= 0 yields nil.
func ProjectMonths(r paye.Result, start time.Time, months int) []ProjectionMonth {
	if months <= 0 {
		return nil
	}

	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	projection := make([]ProjectionMonth, 0, months)

	var gross, net, tax, nssf float64
	for i := 0; i < months; i++ {
		gross += r.GrossSalary
		net += r.NetSalary
		tax += r.PAYE
		nssf += r.NSSF

		projection = append(projection, ProjectionMonth{
			Month:           i + 1,
			Label:           first.AddDate(0, i, 0).Format("Jan 2006"),
			Gross:           r.GrossSalary,
			Net:             r.NetSalary,
			PAYE:            r.PAYE,
			NSSF:            r.NSSF,
			CumulativeGross: gross,
			CumulativeNet:   net,
			CumulativePAYE:  tax,
			CumulativeNSSF:  nssf,
		})
	}
	return projection
}
