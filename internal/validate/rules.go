package validate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-qc/internal/model"
)

// Rule identifiers. These are stable API: consumers key on them.
const (
	RuleRequiredField      = "required_field"
	RulePartyInformation   = "party_information"
	RuleFinancialField     = "financial_field"
	RuleCurrencyRequired   = "currency_required"
	RuleDateFormat         = "date_format"
	RuleCurrencyValidation = "currency_validation"
	RuleNumericValidation  = "numeric_validation"
	RuleLineItemsSum       = "line_items_sum"
	RuleTaxCalculation     = "tax_calculation"
	RuleDueDateLogic       = "due_date_logic"
	RuleDuplicateInvoice   = "duplicate_invoice"
	RuleReasonableAmount   = "reasonable_amount"
)

func errorDiag(rule, format string, args ...interface{}) model.ValidationError {
	return model.ValidationError{
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
		Severity: model.SeverityError,
	}
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// checkCompleteness: required fields, party information, the three
// monetary totals, and currency presence.
func (e *Engine) checkCompleteness(inv *model.Invoice) []model.ValidationError {
	var errs []model.ValidationError

	if isBlank(inv.InvoiceNumber) {
		errs = append(errs, errorDiag(RuleRequiredField, "Missing required field: invoice_number"))
	}
	if inv.InvoiceDate == nil {
		errs = append(errs, errorDiag(RuleRequiredField, "Missing required field: invoice_date"))
	}
	if isBlank(inv.SellerName) {
		errs = append(errs, errorDiag(RuleRequiredField, "Missing required field: seller_name"))
	}
	if isBlank(inv.BuyerName) {
		errs = append(errs, errorDiag(RuleRequiredField, "Missing required field: buyer_name"))
	}

	if !isBlank(inv.SellerName) && isBlank(inv.SellerAddress) && isBlank(inv.SellerTaxID) {
		errs = append(errs, errorDiag(RulePartyInformation, "Seller must have address or tax ID"))
	}
	if !isBlank(inv.BuyerName) && isBlank(inv.BuyerAddress) && isBlank(inv.BuyerTaxID) {
		errs = append(errs, errorDiag(RulePartyInformation, "Buyer must have address or tax ID"))
	}

	if inv.NetTotal == nil {
		errs = append(errs, errorDiag(RuleFinancialField, "Missing net_total"))
	}
	if inv.TaxAmount == nil {
		errs = append(errs, errorDiag(RuleFinancialField, "Missing tax_amount"))
	}
	if inv.GrossTotal == nil {
		errs = append(errs, errorDiag(RuleFinancialField, "Missing gross_total"))
	}

	if isBlank(inv.Currency) {
		errs = append(errs, errorDiag(RuleCurrencyRequired, "Currency must be specified"))
	}

	return errs
}

// checkFormat: dates normalized, currency membership, amounts
// non-negative.
func (e *Engine) checkFormat(inv *model.Invoice) []model.ValidationError {
	var errs []model.ValidationError

	if inv.InvoiceDate != nil && !inv.InvoiceDate.Valid() {
		errs = append(errs, errorDiag(RuleDateFormat, "Invalid invoice_date format: %s", inv.InvoiceDate.Raw))
	}
	if inv.DueDate != nil && !inv.DueDate.Valid() {
		errs = append(errs, errorDiag(RuleDateFormat, "Invalid due_date format: %s", inv.DueDate.Raw))
	}

	if !isBlank(inv.Currency) {
		if _, ok := e.cfg.Currencies[*inv.Currency]; !ok {
			errs = append(errs, errorDiag(RuleCurrencyValidation, "Unknown currency: %s", *inv.Currency))
		}
	}

	for _, field := range []struct {
		name  string
		value *decimal.Decimal
	}{
		{"net_total", inv.NetTotal},
		{"tax_amount", inv.TaxAmount},
		{"gross_total", inv.GrossTotal},
	} {
		if field.value != nil && field.value.IsNegative() {
			errs = append(errs, errorDiag(RuleNumericValidation, "%s cannot be negative", field.name))
		}
	}

	return errs
}

// checkBusiness: line-item sum, tax arithmetic, due-date ordering.
// A tolerance check with an unset operand cannot be evaluated and
// raises nothing; completeness already reported the absence.
func (e *Engine) checkBusiness(inv *model.Invoice) []model.ValidationError {
	var errs []model.ValidationError

	if len(inv.LineItems) > 0 && inv.NetTotal != nil {
		sum := decimal.Zero
		for _, item := range inv.LineItems {
			sum = sum.Add(item.LineTotal)
		}
		if !e.withinTolerance(sum, *inv.NetTotal) {
			errs = append(errs, errorDiag(RuleLineItemsSum,
				"Line items sum (%s) doesn't match net_total (%s)",
				sum.StringFixed(2), inv.NetTotal.StringFixed(2)))
		}
	}

	if inv.NetTotal != nil && inv.TaxAmount != nil && inv.GrossTotal != nil {
		expected := inv.NetTotal.Add(*inv.TaxAmount)
		if !e.withinTolerance(expected, *inv.GrossTotal) {
			errs = append(errs, errorDiag(RuleTaxCalculation,
				"net_total + tax_amount (%s) doesn't match gross_total (%s)",
				expected.StringFixed(2), inv.GrossTotal.StringFixed(2)))
		}
	}

	if inv.InvoiceDate != nil && inv.DueDate != nil &&
		inv.InvoiceDate.Valid() && inv.DueDate.Valid() &&
		inv.DueDate.Before(*inv.InvoiceDate) {
		errs = append(errs, errorDiag(RuleDueDateLogic,
			"due_date (%s) is before invoice_date (%s)", inv.DueDate, inv.InvoiceDate))
	}

	return errs
}

// checkAnomalies: duplicate composite key and gross-total bounds.
func (e *Engine) checkAnomalies(inv *model.Invoice) []model.ValidationError {
	var errs []model.ValidationError

	key := Key{
		Number: deref(inv.InvoiceNumber),
		Seller: deref(inv.SellerName),
		Date:   dateKey(inv.InvoiceDate),
	}
	if e.tracker.CheckAndRecord(key) {
		errs = append(errs, errorDiag(RuleDuplicateInvoice,
			"Duplicate invoice detected: %s", inv.ID()))
	}

	if inv.GrossTotal != nil {
		switch {
		case !inv.GrossTotal.IsPositive():
			errs = append(errs, errorDiag(RuleReasonableAmount, "gross_total must be greater than 0"))
		case inv.GrossTotal.GreaterThanOrEqual(e.cfg.MaxAmount):
			errs = append(errs, errorDiag(RuleReasonableAmount,
				"gross_total (%s) exceeds maximum (%s)",
				inv.GrossTotal.StringFixed(2), e.cfg.MaxAmount.StringFixed(2)))
		}
	}

	return errs
}

func (e *Engine) withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(e.cfg.Tolerance)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateKey(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
