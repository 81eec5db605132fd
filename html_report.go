package main

import (
	"fmt"
	"html"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"goPayeCalculator/paye"
)

// GenerateComparisonHTML writes an HTML salary comparison report to filename
func GenerateComparisonHTML(rows []paye.ComparisonRow, ratesName string, filename string) error {
	return writeReportFile(filename, func(w io.Writer) error {
		return WriteComparisonHTML(w, rows, ratesName, time.Now())
	})
}

// writeReportFile creates filename and fills it with write. The file is closed
// before returning and a failed close is reported like a failed write.
func writeReportFile(filename string, write func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", filename)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", filename)
	}
	return nil
}

// WriteComparisonHTML renders the comparison table as a standalone HTML page
func WriteComparisonHTML(w io.Writer, rows []paye.ComparisonRow, ratesName string, generated time.Time) error {
	ew := &errWriter{w: w}

	ew.printf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Salary Comparison: %s</title>
    <style>
        :root {
            --primary: #0e7c3a;
            --accent: #b91c1c;
            --bg: #f8fafc;
            --card-bg: #ffffff;
            --text: #1e293b;
            --text-muted: #64748b;
            --border: #e2e8f0;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.6;
            padding: 2rem;
        }
        .container { max-width: 1100px; margin: 0 auto; }
        h1 { font-size: 1.75rem; margin-bottom: 0.5rem; color: var(--primary); }
        .subtitle { color: var(--text-muted); margin-bottom: 1.5rem; }
        table {
            width: 100%%;
            border-collapse: collapse;
            background: var(--card-bg);
            border: 1px solid var(--border);
            border-radius: 8px;
            overflow: hidden;
        }
        th, td { padding: 0.6rem 0.9rem; text-align: right; border-bottom: 1px solid var(--border); }
        th { background: var(--primary); color: #fff; font-weight: 600; }
        tr:nth-child(even) td { background: #f1f5f9; }
        td.net { font-weight: 600; color: var(--primary); }
        .bar { height: 8px; background: var(--accent); border-radius: 4px; }
        .footer { margin-top: 1.5rem; font-size: 0.85rem; color: var(--text-muted); }
    </style>
</head>
<body>
<div class="container">
    <h1>Net Salary Comparison</h1>
    <div class="subtitle">Rates: %s</div>
    <table>
        <thead>
        <tr>
            <th>Gross</th><th>PAYE</th><th>Total deductions</th><th>Net</th>
            <th>Effective rate</th><th>Marginal rate</th><th style="width:18%%">Tax share</th>
        </tr>
        </thead>
        <tbody>
`, html.EscapeString(ratesName), html.EscapeString(ratesName))

	for _, row := range rows {
		ew.printf(`        <tr>
            <td>%s</td><td>%s</td><td>%s</td><td class="net">%s</td>
            <td>%s</td><td>%s</td><td><div class="bar" style="width:%.1f%%"></div></td>
        </tr>
`,
			FormatMoney(row.Gross), FormatMoney(row.PAYE), FormatMoney(row.TotalDeductions), FormatMoney(row.Net),
			formatPercent(row.EffectiveTaxRate), formatPercent(row.MarginalRate), barWidth(row.EffectiveTaxRate))
	}

	ew.printf(`        </tbody>
    </table>
    <div class="footer">Generated %s. %d salary levels.</div>
</div>
</body>
</html>
`, generated.Format("2 January 2006 15:04"), len(rows))

	return ew.err
}

// barWidth maps an effective rate onto a bar where 40% fills the cell
func barWidth(rate float64) float64 {
	w := rate / 0.40 * 100
	if w < 0 {
		return 0
	}
	if w > 100 {
		return 100
	}
	return w
}

// errWriter keeps the first write error so the template can be written
// without checking every call
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
