// Package extract recovers a normalized invoice record from raw page
// text and optional table grids.
package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-qc/internal/model"
	"github.com/rezonia/invoice-qc/internal/normalize"
)

// Document is one source document as handed to the pipeline: page text
// already produced by an external converter, plus an optional table
// grid for line-item recovery.
type Document struct {
	Name  string     `json:"name,omitempty"`
	Text  string     `json:"text"`
	Table [][]string `json:"table,omitempty"`
}

// Pattern lists are ordered most specific to most generic; the first
// match anywhere in the text wins. The German forms come first because
// the documents this catalogue was built from are German B2B
// (Bestellung/Rechnung) paperwork.

var numberPatterns = compile(
	`Bestellung\s+(AUFNR\d+)`,
	`(AUFNR\d+)`,
	`(?i)Rechnung\s*(?:Nr\.?|Number|#)?[:\s]*([A-Z0-9][A-Z0-9-]+)`,
	`(?i)Invoice\s*(?:No\.?|Number|#)?[:\s]*([A-Z0-9][A-Z0-9-]+)`,
)

var datePatterns = compile(
	`vom\s+(\d{2}\.\d{2}\.\d{4})`,
	`(?i)Datum[:\s]*(\d{2}\.\d{2}\.\d{4})`,
	`(?i)Invoice\s+Date[:\s]*(\d{1,4}[./-]\d{1,2}[./-]\d{1,4})`,
	`(?i)Date[:\s]*(\d{1,4}[./-]\d{1,2}[./-]\d{1,4})`,
)

var dueDatePatterns = compile(
	`(?i)F[äa]llig(?:keitsdatum)?(?:\s+am)?[:\s]*(\d{2}\.\d{2}\.\d{4})`,
	`(?i)Zahlbar\s+bis[:\s]*(\d{2}\.\d{2}\.\d{4})`,
	`(?i)Due\s*Date[:\s]*(\d{1,4}[./-]\d{1,2}[./-]\d{1,4})`,
)

var sellerNamePatterns = compile(
	`(?m)^([A-Z][A-Za-z\s]+Corporation)`,
	`(?m)^([A-Z][A-Za-z\s]+GmbH)`,
	`(?i)Seller[:\s]*([^\n]+)`,
)

var sellerAddressPatterns = compile(
	`Kundenanschrift\s*\n[^\n]+\n([^\n]+)\n([^\n]+)`,
	`(?i)([A-Za-zäöüÄÖÜß\-]+(?:str\.|straße|weg|platz)[^\n]*\d{5}[^\n]+)`,
	`(\d{5}\s+[A-Za-zäöüÄÖÜß]+)\s*\n?\s*Deutschland`,
	`([A-Z]{2}\s+\d{5})`,
)

var buyerNamePatterns = compile(
	`Kundenanschrift\s*\n([^\n]+)`,
	`im Auftrag von\s+\d+\s*\n([^\n]+)`,
	`(?i)Buyer[:\s]*([^\n]+)`,
	`(?i)Bill\s+To[:\s]*\n?([^\n]+)`,
)

var buyerAddressPatterns = compile(
	`·\s*([^·\n]+,\s*[A-Za-zäöüÄÖÜß\s]+,\s*[A-Z]{2}\s+\d+)`,
)

var sellerTaxIDPatterns = compile(
	`Kundennummer\s*\n(\d+)`,
	`(?i)Seller\s+Tax\s*ID[:\s]*([A-Z0-9-]+)`,
	`(?i)USt-IdNr\.?[:\s]*([A-Z]{2}\d+)`,
)

var buyerTaxIDPatterns = compile(
	`Endkundennummer\s*\n(\d+)`,
	`(?i)Buyer\s+Tax\s*ID[:\s]*([A-Z0-9-]+)`,
)

var netTotalPatterns = compile(
	`Gesamtwert\s+EUR\s+([\d.,]+)`,
	`(?i)Netto[:\s]*([\d.,]+)`,
	`(?i)Net\s+Total[:\s]*([\d.,]+)`,
	`(?i)Subtotal[:\s]*([\d.,]+)`,
)

var taxAmountPatterns = compile(
	`MwSt\.\s+[\d,]+%\s+EUR\s+([\d.,]+)`,
	`(?i)VAT[:\s]*([\d.,]+)`,
	`(?i)Tax(?:\s+Amount)?[:\s]*([\d.,]+)`,
)

var grossTotalPatterns = compile(
	`Gesamtwert\s+inkl\.\s+MwSt\.\s+EUR\s+([\d.,]+)`,
	`(?i)Total\s+inkl[:\s]*([\d.,]+)`,
	`(?i)Brutto[:\s]*([\d.,]+)`,
	`(?i)Gross\s+Total[:\s]*([\d.,]+)`,
	`(?i)Grand\s+Total[:\s]*([\d.,]+)`,
)

var paymentTermsPatterns = compile(
	`Zahlungsbedingungen\s*\n([^\n]+)`,
	`(?i)Payment\s+Terms[:\s]*([^\n]+)`,
)

var externalRefPatterns = compile(
	`im Auftrag von\s+(\d+)`,
	`(?i)Reference[:\s]*([A-Z0-9-]+)`,
)

var currencyPatterns = compile(
	`(?i)Currency[:\s]*([A-Z]{3})`,
	`\b(EUR|USD|GBP|INR|JPY|CHF|CAD|AUD|CNY|SEK)\b`,
	`([€$£¥₹])`,
)

func compile(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

// FieldExtractor scans page text with prioritized pattern lists and
// routes matched values through the normalizers.
type FieldExtractor struct {
	dates *normalize.DateNormalizer
}

// NewFieldExtractor creates an extractor using the given date
// normalizer.
func NewFieldExtractor(dates *normalize.DateNormalizer) *FieldExtractor {
	return &FieldExtractor{dates: dates}
}

// Extract populates invoice-level fields from page text. A field whose
// patterns all fail, or whose matched value the normalizer rejects, is
// left unset; extraction never fails for a missing field.
func (e *FieldExtractor) Extract(pageText string) *model.Invoice {
	inv := &model.Invoice{LineItems: []model.LineItem{}}

	inv.InvoiceNumber = e.text(pageText, numberPatterns)
	inv.InvoiceDate = e.date(pageText, datePatterns)
	inv.DueDate = e.date(pageText, dueDatePatterns)
	inv.SellerName = e.sellerName(pageText)
	inv.SellerAddress = e.sellerAddress(pageText)
	inv.SellerTaxID = e.text(pageText, sellerTaxIDPatterns)
	inv.BuyerName = e.text(pageText, buyerNamePatterns)
	inv.BuyerAddress = e.text(pageText, buyerAddressPatterns)
	inv.BuyerTaxID = e.text(pageText, buyerTaxIDPatterns)
	inv.Currency = e.currency(pageText)
	inv.NetTotal = e.amount(pageText, netTotalPatterns)
	inv.TaxAmount = e.amount(pageText, taxAmountPatterns)
	inv.GrossTotal = e.amount(pageText, grossTotalPatterns)
	inv.PaymentTerms = e.text(pageText, paymentTermsPatterns)
	inv.ExternalReference = e.text(pageText, externalRefPatterns)

	return inv
}

func firstMatch(text string, patterns []*regexp.Regexp) (string, bool) {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			v := strings.TrimSpace(m[1])
			if v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func (e *FieldExtractor) text(text string, patterns []*regexp.Regexp) *string {
	if v, ok := firstMatch(text, patterns); ok {
		return model.String(v)
	}
	return nil
}

func (e *FieldExtractor) amount(text string, patterns []*regexp.Regexp) *decimal.Decimal {
	if v, ok := firstMatch(text, patterns); ok {
		if d, err := normalize.ParseAmount(v); err == nil {
			return model.Dec(d)
		}
	}
	return nil
}

func (e *FieldExtractor) date(text string, patterns []*regexp.Regexp) *model.Date {
	if v, ok := firstMatch(text, patterns); ok {
		if t, err := e.dates.Parse(v); err == nil {
			return model.DatePtr(model.Date{Time: t, Raw: v})
		}
	}
	return nil
}

func (e *FieldExtractor) currency(text string) *string {
	if v, ok := firstMatch(text, currencyPatterns); ok {
		return model.String(normalize.NormalizeCurrency(v))
	}
	return nil
}

// sellerName falls back to scanning the document header for a line
// that looks like a company when no pattern matches.
func (e *FieldExtractor) sellerName(text string) *string {
	if v := e.text(text, sellerNamePatterns); v != nil {
		return v
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines) && i < 10; i++ {
		line := lines[i]
		if strings.Contains(line, "Corporation") || strings.Contains(line, "GmbH") ||
			strings.Contains(line, "Unternehmen") {
			return model.String(strings.TrimSpace(line))
		}
	}
	return nil
}

func (e *FieldExtractor) sellerAddress(text string) *string {
	for i, p := range sellerAddressPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		// The Kundenanschrift pattern captures two lines.
		if i == 0 && len(m) > 2 {
			return model.String(strings.TrimSpace(m[1]) + ", " + strings.TrimSpace(m[2]))
		}
		return model.String(strings.TrimSpace(m[1]))
	}
	return nil
}
