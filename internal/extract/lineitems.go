package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-qc/internal/model"
	"github.com/rezonia/invoice-qc/internal/normalize"
)

// LineItemParser recovers line items from a table grid when one is
// available, falling back to line-oriented text heuristics otherwise.
// The fallback is best effort; the parser returns whatever it recovers
// rather than failing the invoice.
type LineItemParser struct{}

// NewLineItemParser creates a line-item parser.
func NewLineItemParser() *LineItemParser {
	return &LineItemParser{}
}

// Parse tries the table grid first; when no grid is supplied or its
// columns cannot be mapped, it scans the raw text line by line.
func (p *LineItemParser) Parse(table [][]string, rawText string) []model.LineItem {
	if len(table) > 1 {
		if items, ok := p.parseTable(table); ok {
			return items
		}
	}
	return p.parseText(rawText)
}

// Column header keywords, matched case-insensitively as substrings.
var columnKeywords = map[string][]string{
	"description": {"description", "beschreibung", "artikel", "item", "bezeichnung"},
	"quantity":    {"quantity", "qty", "menge", "anzahl"},
	"unit_price":  {"unit price", "einzelpreis", "preis", "price", "rate"},
	"line_total":  {"line total", "total", "gesamt", "betrag", "amount", "summe"},
}

func mapColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, cell := range header {
		lower := strings.ToLower(strings.TrimSpace(cell))
		for field, keywords := range columnKeywords {
			if _, taken := cols[field]; taken {
				continue
			}
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					cols[field] = i
					break
				}
			}
		}
	}
	return cols
}

func (p *LineItemParser) parseTable(table [][]string) ([]model.LineItem, bool) {
	cols := mapColumns(table[0])
	_, hasQty := cols["quantity"]
	_, hasPrice := cols["unit_price"]
	_, hasTotal := cols["line_total"]
	if !hasQty || (!hasPrice && !hasTotal) {
		return nil, false
	}

	var items []model.LineItem
	for _, row := range table[1:] {
		item, ok := rowToItem(row, cols)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, true
}

func rowToItem(row []string, cols map[string]int) (model.LineItem, bool) {
	cell := func(field string) (string, bool) {
		idx, ok := cols[field]
		if !ok || idx >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[idx]), true
	}
	amount := func(field string) (decimal.Decimal, bool) {
		raw, ok := cell(field)
		if !ok || raw == "" {
			return decimal.Zero, false
		}
		d, err := normalize.ParseAmount(raw)
		return d, err == nil
	}

	qty, qtyOK := amount("quantity")
	price, priceOK := amount("unit_price")
	total, totalOK := amount("line_total")

	// A usable row needs a quantity and at least one of price/total;
	// the missing one is derived.
	if !qtyOK || qty.IsZero() || (!priceOK && !totalOK) {
		return model.LineItem{}, false
	}
	if !priceOK {
		price = total.Div(qty).Round(2)
	}
	if !totalOK {
		total = qty.Mul(price).Round(2)
	}

	desc, _ := cell("description")
	return model.LineItem{
		Description: desc,
		Quantity:    qty,
		UnitPrice:   price,
		LineTotal:   total,
	}, true
}

// German order rows: "1  Widget blau  10 VE ... 1.234,56".
var positionLine = regexp.MustCompile(`^(\d+)\s+(.+?)\s+(\d+)\s+VE\b.*?([\d.,]+)\s*$`)

// Generic rows: "Widget blue  3 x 12,50" with an optional "= 37,50".
var quantityPriceLine = regexp.MustCompile(`^(.{3,}?)\s+(\d+(?:[.,]\d+)?)\s*[x×*]\s*([\d.,]+)(?:\s*=?\s*([\d.,]+))?\s*$`)

func (p *LineItemParser) parseText(rawText string) []model.LineItem {
	var items []model.LineItem
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimRight(line, " \t")
		if item, ok := parsePositionLine(line); ok {
			items = append(items, item)
			continue
		}
		if item, ok := parseQuantityPriceLine(line); ok {
			items = append(items, item)
		}
	}
	return items
}

func parsePositionLine(line string) (model.LineItem, bool) {
	m := positionLine.FindStringSubmatch(line)
	if m == nil {
		return model.LineItem{}, false
	}
	qty, err := normalize.ParseAmount(m[3])
	if err != nil || qty.IsZero() {
		return model.LineItem{}, false
	}
	total, err := normalize.ParseAmount(m[4])
	if err != nil {
		return model.LineItem{}, false
	}
	return model.LineItem{
		Description: strings.TrimSpace(m[2]),
		Quantity:    qty,
		UnitPrice:   total.Div(qty).Round(2),
		LineTotal:   total,
	}, true
}

func parseQuantityPriceLine(line string) (model.LineItem, bool) {
	m := quantityPriceLine.FindStringSubmatch(line)
	if m == nil {
		return model.LineItem{}, false
	}
	qty, qerr := normalize.ParseAmount(m[2])
	price, perr := normalize.ParseAmount(m[3])
	if qerr != nil || perr != nil || qty.IsZero() {
		return model.LineItem{}, false
	}
	total := qty.Mul(price).Round(2)
	if m[4] != "" {
		if t, err := normalize.ParseAmount(m[4]); err == nil {
			total = t
		}
	}
	return model.LineItem{
		Description: strings.TrimSpace(m[1]),
		Quantity:    qty,
		UnitPrice:   price,
		LineTotal:   total,
	}, true
}
