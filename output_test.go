package main

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goPayeCalculator/paye"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "KES 0.00"},
		{100, "KES 100.00"},
		{1000, "KES 1,000.00"},
		{70342.65, "KES 70,342.65"},
		{1234567.891, "KES 1,234,567.89"},
		{-1500.5, "-KES 1,500.50"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatMoney(tc.amount), "FormatMoney(%v)", tc.amount)
	}
}

func TestFormatMoneyShort(t *testing.T) {
	assert.Equal(t, "KES 500", FormatMoneyShort(500))
	assert.Equal(t, "KES 75k", FormatMoneyShort(75000))
	assert.Equal(t, "KES 1.2M", FormatMoneyShort(1200000))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "21.09%", formatPercent(0.2108735))
	assert.Equal(t, "0.00%", formatPercent(0))
	assert.Equal(t, "35.00%", formatPercent(0.35))
}

func TestWriteComparisonCSV(t *testing.T) {
	rows, err := paye.Default().CompareSalaries([]float64{100000, 30000}, paye.Elections{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteComparisonCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"gross", "net", "paye", "total_deductions", "effective_tax_rate", "marginal_rate"}, records[0])
	assert.Equal(t, []string{"100000.00", "70342.65", "21087.35", "29657.35", "0.2109", "0.3000"}, records[1])
	assert.Equal(t, "30000.00", records[2][0])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestPrintResult(t *testing.T) {
	calc := paye.Default()
	r, err := calc.FullCalculation(100000, paye.Elections{LoanRepayment: 2000})
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintResult(&buf, r, calc.ReliefUtilisation(r))
	out := buf.String()

	assert.Contains(t, out, "KES 21,087.35")
	assert.Contains(t, out, "HELB loan")
	assert.Contains(t, out, "KES 68,342.65")
	// No benefits, so no adjusted gross line
	assert.NotContains(t, out, "Adjusted gross")
}

func TestPrintBands(t *testing.T) {
	var buf bytes.Buffer
	PrintBands(&buf, 95680, paye.BandBreakdown(95680))
	out := buf.String()

	assert.Contains(t, out, "and above")
	assert.Contains(t, out, "KES 23,487.35")
}

func TestWriteComparisonHTML(t *testing.T) {
	rows, err := paye.Default().CompareSalaries([]float64{100000}, paye.Elections{})
	require.NoError(t, err)

	var buf bytes.Buffer
	generated := time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, WriteComparisonHTML(&buf, rows, "Kenya <2026>", generated))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "Kenya &lt;2026&gt;")
	assert.NotContains(t, out, "Kenya <2026>")
	assert.Contains(t, out, `<td class="net">KES 70,342.65</td>`)
	assert.Contains(t, out, `style="width:52.7%"`)
	assert.Contains(t, out, "Generated 14 October 2026 09:30. 1 salary levels.")
}

func TestWriteReportFile(t *testing.T) {
	t.Run("contents complete on return", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.csv")
		rows, err := paye.Default().CompareSalaries([]float64{50000, 100000}, paye.Elections{})
		require.NoError(t, err)

		require.NoError(t, writeReportFile(path, func(w io.Writer) error {
			return WriteComparisonCSV(w, rows)
		}))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 3)
	})

	t.Run("write error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.csv")
		boom := errors.New("disk full")
		err := writeReportFile(path, func(io.Writer) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "write "+path)
	})

	t.Run("create error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "report.csv")
		err := writeReportFile(path, func(io.Writer) error { return nil })
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestGenerateComparisonHTML_File(t *testing.T) {
	rows, err := paye.Default().CompareSalaries([]float64{100000}, paye.Elections{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "compare.html")
	require.NoError(t, GenerateComparisonHTML(rows, "Kenya 2026", path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(data)), "</html>"))

	assert.Error(t, GenerateComparisonHTML(rows, "Kenya 2026", filepath.Join(t.TempDir(), "missing", "compare.html")))
}

func TestBarWidth(t *testing.T) {
	assert.Equal(t, 0.0, barWidth(-0.1))
	assert.InDelta(t, 50, barWidth(0.2), 1e-9)
	assert.Equal(t, 100.0, barWidth(0.5))
}
