// Package model defines the normalized invoice record, validation
// diagnostics, and the report types shared across the pipeline.
package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-qc/internal/normalize"
)

func init() {
	// Amounts go over the wire as bare JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the canonical wire format for dates.
const DateLayout = "2006-01-02"

// Date is a calendar date. When a JSON payload carries a date no
// accepted layout recognizes, the raw string is retained so the
// format rule can report it instead of the whole decode failing.
type Date struct {
	Time time.Time
	Raw  string
}

// NewDate builds a date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Valid reports whether the date was successfully normalized.
func (d Date) Valid() bool {
	return !d.Time.IsZero()
}

// Before reports whether d is an earlier calendar date than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) String() string {
	if !d.Valid() {
		return d.Raw
	}
	return d.Time.Format(DateLayout)
}

// MarshalJSON emits the canonical YYYY-MM-DD form, or the raw input
// when normalization failed.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses against the default layout priority; an
// unrecognized format keeps the raw value and leaves the date invalid.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	d.Raw = s
	if t, err := normalize.NewDateNormalizer().Parse(s); err == nil {
		d.Time = t
	}
	return nil
}

// LineItem is one billable row within an invoice. It has no identity
// beyond its position in the parent's sequence.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Invoice is the normalized record extracted from one source document.
// Every field except the line-item sequence is optional: a nil pointer
// means extraction could not locate the field, never "zero".
type Invoice struct {
	InvoiceNumber     *string          `json:"invoice_number,omitempty"`
	InvoiceDate       *Date            `json:"invoice_date,omitempty"`
	DueDate           *Date            `json:"due_date,omitempty"`
	SellerName        *string          `json:"seller_name,omitempty"`
	SellerAddress     *string          `json:"seller_address,omitempty"`
	SellerTaxID       *string          `json:"seller_tax_id,omitempty"`
	BuyerName         *string          `json:"buyer_name,omitempty"`
	BuyerAddress      *string          `json:"buyer_address,omitempty"`
	BuyerTaxID        *string          `json:"buyer_tax_id,omitempty"`
	Currency          *string          `json:"currency,omitempty"`
	NetTotal          *decimal.Decimal `json:"net_total,omitempty"`
	TaxAmount         *decimal.Decimal `json:"tax_amount,omitempty"`
	GrossTotal        *decimal.Decimal `json:"gross_total,omitempty"`
	PaymentTerms      *string          `json:"payment_terms,omitempty"`
	ExternalReference *string          `json:"external_reference,omitempty"`
	LineItems         []LineItem       `json:"line_items"`
}

// FallbackID identifies invoices whose number could not be extracted.
const FallbackID = "UNKNOWN"

// ID returns the invoice number, or FallbackID when absent.
func (inv *Invoice) ID() string {
	if inv.InvoiceNumber != nil && *inv.InvoiceNumber != "" {
		return *inv.InvoiceNumber
	}
	return FallbackID
}

// String returns a pointer to v, for building optional fields.
func String(v string) *string { return &v }

// Dec returns a pointer to v, for building optional amounts.
func Dec(v decimal.Decimal) *decimal.Decimal { return &v }

// DatePtr returns a pointer to v, for building optional dates.
func DatePtr(v Date) *Date { return &v }
