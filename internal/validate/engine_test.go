package validate_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-qc/internal/model"
	"github.com/rezonia/invoice-qc/internal/validate"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// validInvoice builds an invoice that passes every rule.
func validInvoice(number string) *model.Invoice {
	return &model.Invoice{
		InvoiceNumber: model.String(number),
		InvoiceDate:   model.DatePtr(model.NewDate(2024, time.January, 10)),
		DueDate:       model.DatePtr(model.NewDate(2024, time.February, 9)),
		SellerName:    model.String("ACME Corp"),
		SellerAddress: model.String("123 Main St"),
		BuyerName:     model.String("Client Inc"),
		BuyerAddress:  model.String("456 Oak Ave"),
		Currency:      model.String("EUR"),
		NetTotal:      model.Dec(dec("100.00")),
		TaxAmount:     model.Dec(dec("19.00")),
		GrossTotal:    model.Dec(dec("119.00")),
		LineItems:     []model.LineItem{},
	}
}

func newEngine() *validate.Engine {
	return validate.NewEngine(validate.DefaultConfig(), nil)
}

func rulesOf(result model.ValidationResult) []string {
	rules := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		rules = append(rules, e.Rule)
	}
	return rules
}

func TestValidate_CleanInvoice(t *testing.T) {
	result := newEngine().Validate(validInvoice("INV-1"))

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "INV-1", result.InvoiceID)
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	inv := validInvoice("INV-1")
	inv.BuyerName = nil
	inv.BuyerAddress = nil

	result := newEngine().Validate(inv)

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{validate.RuleRequiredField}, rulesOf(result))
	assert.Equal(t, "Missing required field: buyer_name", result.Errors[0].Message)
}

func TestValidate_PartyInformation(t *testing.T) {
	inv := validInvoice("INV-1")
	inv.SellerAddress = nil

	result := newEngine().Validate(inv)

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{validate.RulePartyInformation}, rulesOf(result))

	// A tax ID satisfies the party rule without an address.
	inv = validInvoice("INV-2")
	inv.SellerAddress = nil
	inv.SellerTaxID = model.String("DE123456789")
	assert.True(t, newEngine().Validate(inv).IsValid)
}

func TestValidate_MissingFinancialsAndCurrency(t *testing.T) {
	inv := validInvoice("INV-1")
	inv.NetTotal = nil
	inv.TaxAmount = nil
	inv.GrossTotal = nil
	inv.Currency = nil

	result := newEngine().Validate(inv)

	assert.False(t, result.IsValid)
	// The arithmetic checks must not fire when an operand is unset.
	assert.ElementsMatch(t, []string{
		validate.RuleFinancialField,
		validate.RuleFinancialField,
		validate.RuleFinancialField,
		validate.RuleCurrencyRequired,
	}, rulesOf(result))
}

func TestValidate_DateFormat(t *testing.T) {
	inv := validInvoice("INV-1")
	inv.InvoiceDate = model.DatePtr(model.Date{Raw: "not-a-date"})

	result := newEngine().Validate(inv)

	assert.False(t, result.IsValid)
	assert.Contains(t, rulesOf(result), validate.RuleDateFormat)
	// An invalid invoice date disables the due-date ordering check.
	assert.NotContains(t, rulesOf(result), validate.RuleDueDateLogic)
}

func TestValidate_UnknownCurrency(t *testing.T) {
	inv := validInvoice("INV-1")
	inv.Currency = model.String("XYZ")

	result := newEngine().Validate(inv)

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{validate.RuleCurrencyValidation}, rulesOf(result))
}

func TestValidate_NegativeAmounts(t *testing.T) {
	inv := validInvoice("INV-1")
	inv.NetTotal = model.Dec(dec("-100.00"))
	inv.TaxAmount = model.Dec(dec("-19.00"))
	inv.GrossTotal = model.Dec(dec("-119.00"))

	result := newEngine().Validate(inv)

	assert.False(t, result.IsValid)
	rules := rulesOf(result)
	assert.Equal(t, 3, count(rules, validate.RuleNumericValidation))
	// Negative gross also trips the bounds check.
	assert.Contains(t, rules, validate.RuleReasonableAmount)
}

func TestValidate_TaxCalculationTolerance(t *testing.T) {
	tests := []struct {
		name  string
		gross string
		valid bool
	}{
		{"exact", "119.00", true},
		{"at tolerance", "119.02", true},
		{"below tolerance", "118.98", true},
		{"past tolerance", "119.03", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice("INV-1")
			inv.GrossTotal = model.Dec(dec(tt.gross))

			result := newEngine().Validate(inv)
			assert.Equal(t, tt.valid, result.IsValid)
			if !tt.valid {
				assert.Equal(t, []string{validate.RuleTaxCalculation}, rulesOf(result))
			}
		})
	}
}

func TestValidate_LineItemsSum(t *testing.T) {
	inv := validInvoice("INV-1")
	inv.LineItems = []model.LineItem{
		{Description: "Widget", Quantity: dec("2"), UnitPrice: dec("25.00"), LineTotal: dec("50.00")},
		{Description: "Gadget", Quantity: dec("1"), UnitPrice: dec("50.01"), LineTotal: dec("50.01")},
	}

	// Sum 100.01 vs net 100.00 is inside the 0.02 tolerance.
	assert.True(t, newEngine().Validate(inv).IsValid)

	inv.LineItems[1].LineTotal = dec("50.10")
	result := newEngine().Validate(inv)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{validate.RuleLineItemsSum}, rulesOf(result))
}

func TestValidate_DueDateLogic(t *testing.T) {
	inv := validInvoice("INV-1")
	inv.DueDate = model.DatePtr(model.NewDate(2024, time.January, 9))

	result := newEngine().Validate(inv)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{validate.RuleDueDateLogic}, rulesOf(result))

	// Due date equal to the invoice date is allowed.
	inv.DueDate = model.DatePtr(model.NewDate(2024, time.January, 10))
	assert.True(t, newEngine().Validate(inv).IsValid)
}

func TestValidate_DuplicateInvoice(t *testing.T) {
	engine := newEngine()

	first := engine.Validate(validInvoice("INV-1"))
	assert.True(t, first.IsValid)

	second := engine.Validate(validInvoice("INV-1"))
	assert.False(t, second.IsValid)
	assert.Equal(t, []string{validate.RuleDuplicateInvoice}, rulesOf(second))
	assert.Equal(t, "Duplicate invoice detected: INV-1", second.Errors[0].Message)

	// Same number but a different seller is a distinct key.
	third := validInvoice("INV-1")
	third.SellerName = model.String("Other GmbH")
	assert.True(t, engine.Validate(third).IsValid)
}

func TestValidate_ReasonableAmountBounds(t *testing.T) {
	inv := validInvoice("INV-1")
	inv.NetTotal = nil
	inv.TaxAmount = nil

	inv.GrossTotal = model.Dec(dec("0"))
	result := newEngine().Validate(inv)
	assert.Contains(t, rulesOf(result), validate.RuleReasonableAmount)

	// The ceiling is exclusive.
	inv.GrossTotal = model.Dec(dec("1000000"))
	result = newEngine().Validate(inv)
	assert.Contains(t, rulesOf(result), validate.RuleReasonableAmount)

	inv.GrossTotal = model.Dec(dec("999999.99"))
	result = newEngine().Validate(inv)
	assert.NotContains(t, rulesOf(result), validate.RuleReasonableAmount)
}

func TestValidateBatch_Aggregation(t *testing.T) {
	engine := newEngine()

	bad := validInvoice("INV-2")
	bad.Currency = model.String("XYZ")

	report := engine.ValidateBatch([]*model.Invoice{validInvoice("INV-1"), bad})

	assert.Equal(t, 2, report.Summary.TotalInvoices)
	assert.Equal(t, 1, report.Summary.ValidInvoices)
	assert.Equal(t, 1, report.Summary.InvalidInvoices)
	assert.Equal(t, map[string]int{validate.RuleCurrencyValidation: 1}, report.Summary.ErrorsByRule)

	require.Len(t, report.Results, 2)
	assert.Equal(t, "INV-1", report.Results[0].InvoiceID)
	assert.Equal(t, "INV-2", report.Results[1].InvoiceID)
}

func TestValidateBatch_Empty(t *testing.T) {
	report := newEngine().ValidateBatch(nil)

	assert.Equal(t, 0, report.Summary.TotalInvoices)
	assert.Equal(t, 0, report.Summary.ValidInvoices)
	assert.Equal(t, 0, report.Summary.InvalidInvoices)
	assert.Empty(t, report.Summary.ErrorsByRule)
	assert.Empty(t, report.Results)
}

func TestValidate_UnknownInvoiceID(t *testing.T) {
	result := newEngine().Validate(&model.Invoice{})
	assert.Equal(t, model.FallbackID, result.InvoiceID)
	assert.False(t, result.IsValid)
}

func count(rules []string, rule string) int {
	n := 0
	for _, r := range rules {
		if r == rule {
			n++
		}
	}
	return n
}
