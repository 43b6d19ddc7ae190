// Package validate runs the fixed catalogue of business-validity rules
// against assembled invoices and aggregates batch reports.
package validate

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-qc/internal/logger"
	"github.com/rezonia/invoice-qc/internal/model"
)

// Config is the validation tuning surface. It is supplied explicitly
// by the caller; nothing here is read from the environment.
type Config struct {
	// Tolerance is the maximum absolute difference between two amounts
	// still considered equal.
	Tolerance decimal.Decimal
	// MaxAmount is the exclusive gross-total ceiling.
	MaxAmount decimal.Decimal
	// Currencies is the set of accepted currency codes.
	Currencies map[string]struct{}
}

// DefaultCurrencies is the known currency set.
var DefaultCurrencies = []string{
	"EUR", "USD", "GBP", "INR", "JPY", "CHF", "CAD", "AUD", "CNY", "SEK",
}

// DefaultConfig returns tolerance 0.02 and a 1,000,000 ceiling.
func DefaultConfig() Config {
	return Config{
		Tolerance:  decimal.NewFromFloat(0.02),
		MaxAmount:  decimal.NewFromInt(1_000_000),
		Currencies: CurrencySet(DefaultCurrencies),
	}
}

// CurrencySet builds a currency lookup set from a code list.
func CurrencySet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

type ruleGroup func(*model.Invoice) []model.ValidationError

// Engine validates invoices against the rule catalogue. Rule groups
// run in a fixed order and their execution order is the reporting
// order. An Engine holds the batch's duplicate tracker; construct one
// engine per batch.
type Engine struct {
	cfg     Config
	tracker *DuplicateTracker
	groups  []ruleGroup
	log     zerolog.Logger
}

// NewEngine creates an engine with the given config and batch tracker.
// A nil tracker gets a fresh one, scoping duplicate detection to this
// engine's lifetime.
func NewEngine(cfg Config, tracker *DuplicateTracker) *Engine {
	if cfg.Currencies == nil {
		cfg.Currencies = CurrencySet(DefaultCurrencies)
	}
	if tracker == nil {
		tracker = NewDuplicateTracker()
	}
	e := &Engine{
		cfg:     cfg,
		tracker: tracker,
		log:     logger.WithComponent("validate"),
	}
	// Explicit ordered list, not a registry: completeness, then
	// type/format, then business arithmetic, then anomaly/duplicate.
	e.groups = []ruleGroup{
		e.checkCompleteness,
		e.checkFormat,
		e.checkBusiness,
		e.checkAnomalies,
	}
	return e
}

// Validate runs every rule group against one invoice. The invoice is
// read only, never mutated. IsValid is true iff no error-severity
// diagnostic was produced; warnings never flip it.
func (e *Engine) Validate(inv *model.Invoice) model.ValidationResult {
	errs := []model.ValidationError{}
	for _, group := range e.groups {
		errs = append(errs, group(inv)...)
	}

	valid := true
	for _, ve := range errs {
		if ve.Severity == model.SeverityError {
			valid = false
			break
		}
	}

	e.log.Debug().
		Str("invoice_id", inv.ID()).
		Bool("is_valid", valid).
		Int("diagnostics", len(errs)).
		Msg("invoice validated")

	return model.ValidationResult{
		InvoiceID: inv.ID(),
		IsValid:   valid,
		Errors:    errs,
	}
}

// ValidateBatch validates invoices in order against this engine's
// shared tracker and returns the aggregated report.
func (e *Engine) ValidateBatch(invoices []*model.Invoice) model.ValidationReport {
	results := make([]model.ValidationResult, len(invoices))
	for i, inv := range invoices {
		results[i] = e.Validate(inv)
	}
	return Aggregate(results)
}
