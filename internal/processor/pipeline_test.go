package processor_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-qc/internal/extract"
	"github.com/rezonia/invoice-qc/internal/model"
	"github.com/rezonia/invoice-qc/internal/processor"
	"github.com/rezonia/invoice-qc/internal/validate"
)

func invoiceDoc(number string) extract.Document {
	text := fmt.Sprintf(`Invoice No: %s
Invoice Date: 2024-01-10
Due Date: 2024-02-09
Seller: ACME Corp
Seller Tax ID: DE123456789
Buyer: Client Inc
Buyer Tax ID: 998877
Currency: EUR
Subtotal: 100.00
Tax Amount: 19.00
Gross Total: 119.00`, number)
	return extract.Document{Name: number + ".txt", Text: text}
}

func TestPipeline_Run(t *testing.T) {
	p := processor.NewPipeline()

	invoices, report := p.Run([]extract.Document{invoiceDoc("INV-1"), invoiceDoc("INV-2")})

	require.Len(t, invoices, 2)
	assert.Equal(t, "INV-1", invoices[0].ID())
	assert.Equal(t, "INV-2", invoices[1].ID())

	assert.Equal(t, 2, report.Summary.TotalInvoices)
	assert.Equal(t, 2, report.Summary.ValidInvoices)
	assert.Equal(t, 0, report.Summary.InvalidInvoices)
}

func TestPipeline_ExtractBatchKeepsOrder(t *testing.T) {
	docs := make([]extract.Document, 20)
	for i := range docs {
		docs[i] = invoiceDoc(fmt.Sprintf("INV-%03d", i))
	}

	invoices := processor.NewPipeline().ExtractBatch(docs)

	require.Len(t, invoices, 20)
	for i, inv := range invoices {
		assert.Equal(t, fmt.Sprintf("INV-%03d", i), inv.ID())
	}
}

func TestPipeline_MalformedDocumentDoesNotAbortSiblings(t *testing.T) {
	p := processor.NewPipeline(processor.WithWorkers(1))

	docs := []extract.Document{
		invoiceDoc("INV-1"),
		{Name: "noise.txt", Text: "completely unrelated page content"},
		invoiceDoc("INV-2"),
	}

	invoices, report := p.Run(docs)

	require.Len(t, invoices, 3)
	assert.Equal(t, model.FallbackID, invoices[1].ID())

	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[0].IsValid)
	assert.False(t, report.Results[1].IsValid)
	assert.True(t, report.Results[2].IsValid)
}

func TestPipeline_DuplicatesWithinRun(t *testing.T) {
	// One worker makes validation order deterministic, so the second
	// occurrence is the flagged one.
	p := processor.NewPipeline(processor.WithWorkers(1))

	_, report := p.Run([]extract.Document{invoiceDoc("INV-1"), invoiceDoc("INV-1")})

	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].IsValid)
	assert.False(t, report.Results[1].IsValid)
	require.Len(t, report.Results[1].Errors, 1)
	assert.Equal(t, validate.RuleDuplicateInvoice, report.Results[1].Errors[0].Rule)
}

func TestPipeline_FreshTrackerPerRun(t *testing.T) {
	p := processor.NewPipeline()

	_, first := p.Run([]extract.Document{invoiceDoc("INV-1")})
	assert.Equal(t, 1, first.Summary.ValidInvoices)

	// The same invoice in a later run is not a duplicate.
	_, second := p.Run([]extract.Document{invoiceDoc("INV-1")})
	assert.Equal(t, 1, second.Summary.ValidInvoices)
}

func TestPipeline_CustomDateLayouts(t *testing.T) {
	doc := extract.Document{Text: "Invoice Date: 03/04/2024"}

	def := processor.NewPipeline().Assemble(doc)
	require.NotNil(t, def.InvoiceDate)
	assert.Equal(t, "2024-04-03", def.InvoiceDate.String())

	us := processor.NewPipeline(processor.WithDateLayouts("01/02/2006")).Assemble(doc)
	require.NotNil(t, us.InvoiceDate)
	assert.Equal(t, "2024-03-04", us.InvoiceDate.String())
}

func TestPipeline_ValidateBatchCustomConfig(t *testing.T) {
	cfg := validate.DefaultConfig()
	cfg.Currencies = validate.CurrencySet([]string{"USD"})
	p := processor.NewPipeline(processor.WithConfig(cfg))

	invoices := p.ExtractBatch([]extract.Document{invoiceDoc("INV-1")})
	report := p.ValidateBatch(invoices)

	assert.Equal(t, 1, report.Summary.InvalidInvoices)
	assert.Equal(t, 1, report.Summary.ErrorsByRule[validate.RuleCurrencyValidation])
}
