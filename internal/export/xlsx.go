// Package export renders validation reports to spreadsheet form.
package export

import (
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/rezonia/invoice-qc/internal/model"
)

// ReportXLSX renders a validation report as an XLSX workbook: a
// Summary sheet with batch counts and per-rule error totals, and a
// Results sheet with one row per diagnostic.
func ReportXLSX(report model.ValidationReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	const resultsSheet = "Results"

	// excelize starts with "Sheet1"; rename it rather than leaving a
	// stray empty sheet behind.
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return nil, err
	}

	set := func(sheet string, col, row int, v interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}

	rows := [][]interface{}{
		{"Total invoices", report.Summary.TotalInvoices},
		{"Valid invoices", report.Summary.ValidInvoices},
		{"Invalid invoices", report.Summary.InvalidInvoices},
		{},
		{"Rule", "Errors"},
	}
	var rules []string
	for rule := range report.Summary.ErrorsByRule {
		rules = append(rules, rule)
	}
	sort.Strings(rules)
	for _, rule := range rules {
		rows = append(rows, []interface{}{rule, report.Summary.ErrorsByRule[rule]})
	}
	for r, row := range rows {
		for c, v := range row {
			if err := set(summarySheet, c+1, r+1, v); err != nil {
				return nil, err
			}
		}
	}

	headers := []interface{}{"Invoice ID", "Valid", "Rule", "Severity", "Message"}
	for c, h := range headers {
		if err := set(resultsSheet, c+1, 1, h); err != nil {
			return nil, err
		}
	}
	row := 2
	for _, result := range report.Results {
		if len(result.Errors) == 0 {
			for c, v := range []interface{}{result.InvoiceID, result.IsValid, "", "", ""} {
				if err := set(resultsSheet, c+1, row, v); err != nil {
					return nil, err
				}
			}
			row++
			continue
		}
		for _, diag := range result.Errors {
			values := []interface{}{result.InvoiceID, result.IsValid, diag.Rule, string(diag.Severity), diag.Message}
			for c, v := range values {
				if err := set(resultsSheet, c+1, row, v); err != nil {
					return nil, err
				}
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
