package model

// Severity classifies a diagnostic. Only error severity affects
// validity; warnings are reserved for anomaly heuristics.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is one rule-violation record. Immutable once created.
type ValidationError struct {
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult is the outcome of validating a single invoice.
// Errors appear in rule execution order.
type ValidationResult struct {
	InvoiceID string            `json:"invoice_id"`
	IsValid   bool              `json:"is_valid"`
	Errors    []ValidationError `json:"errors"`
}

// Summary aggregates counts across a validation batch.
type Summary struct {
	TotalInvoices   int            `json:"total_invoices"`
	ValidInvoices   int            `json:"valid_invoices"`
	InvalidInvoices int            `json:"invalid_invoices"`
	ErrorsByRule    map[string]int `json:"errors_by_rule"`
}

// ValidationReport is the full batch output: summary plus per-invoice
// results in input order.
type ValidationReport struct {
	Summary Summary            `json:"summary"`
	Results []ValidationResult `json:"results"`
}
