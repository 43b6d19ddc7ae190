package validate

import "github.com/rezonia/invoice-qc/internal/model"

// Aggregate folds per-invoice results into a batch report. Counts are
// order-independent; the results sequence mirrors input order.
func Aggregate(results []model.ValidationResult) model.ValidationReport {
	summary := model.Summary{
		TotalInvoices: len(results),
		ErrorsByRule:  map[string]int{},
	}

	for _, r := range results {
		if r.IsValid {
			summary.ValidInvoices++
		} else {
			summary.InvalidInvoices++
		}
		for _, ve := range r.Errors {
			if ve.Severity == model.SeverityError {
				summary.ErrorsByRule[ve.Rule]++
			}
		}
	}

	if results == nil {
		results = []model.ValidationResult{}
	}
	return model.ValidationReport{Summary: summary, Results: results}
}
