package server

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rezonia/invoice-qc/internal/model"
)

// invoiceListSchema guards the validate endpoint: payloads that are
// not a well-formed invoice list are rejected up front as a structured
// input failure, never turned into an empty report. Dates are plain
// strings here; unparseable dates are a validation diagnostic, not a
// schema violation.
const invoiceListSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "invoice_number":     {"type": "string"},
      "invoice_date":       {"type": "string"},
      "due_date":           {"type": "string"},
      "seller_name":        {"type": "string"},
      "seller_address":     {"type": "string"},
      "seller_tax_id":      {"type": "string"},
      "buyer_name":         {"type": "string"},
      "buyer_address":      {"type": "string"},
      "buyer_tax_id":       {"type": "string"},
      "currency":           {"type": "string"},
      "net_total":          {"type": ["number", "string"]},
      "tax_amount":         {"type": ["number", "string"]},
      "gross_total":        {"type": ["number", "string"]},
      "payment_terms":      {"type": "string"},
      "external_reference": {"type": "string"},
      "line_items": {
        "type": "array",
        "items": {
          "type": "object",
          "properties": {
            "description": {"type": "string"},
            "quantity":    {"type": ["number", "string"]},
            "unit_price":  {"type": ["number", "string"]},
            "line_total":  {"type": ["number", "string"]}
          },
          "required": ["description", "quantity", "unit_price", "line_total"]
        }
      }
    },
    "additionalProperties": false
  }
}`

var compiledInvoiceList = jsonschema.MustCompileString("invoices.json", invoiceListSchema)

// decodeInvoiceList schema-checks and decodes a raw invoice-list
// payload. Any failure is a model.InputError.
func decodeInvoiceList(body []byte) ([]*model.Invoice, error) {
	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, model.NewInputError("body is not valid JSON", err)
	}
	if err := compiledInvoiceList.Validate(generic); err != nil {
		return nil, model.NewInputError("body is not a well-formed invoice list", err)
	}

	var invoices []*model.Invoice
	if err := json.Unmarshal(body, &invoices); err != nil {
		return nil, model.NewInputError("cannot decode invoice list", err)
	}
	for _, inv := range invoices {
		if inv != nil && inv.LineItems == nil {
			inv.LineItems = []model.LineItem{}
		}
	}
	return invoices, nil
}
