package extract

import (
	"github.com/rezonia/invoice-qc/internal/model"
	"github.com/rezonia/invoice-qc/internal/normalize"
)

// Assembler composes field extraction and line-item parsing into one
// Invoice per source document. The produced Invoice is immutable by
// convention: validation reads it, nothing mutates it.
type Assembler struct {
	fields *FieldExtractor
	items  *LineItemParser
}

// NewAssembler creates an assembler. A nil date normalizer selects the
// default layout priority.
func NewAssembler(dates *normalize.DateNormalizer) *Assembler {
	if dates == nil {
		dates = normalize.NewDateNormalizer()
	}
	return &Assembler{
		fields: NewFieldExtractor(dates),
		items:  NewLineItemParser(),
	}
}

// Assemble builds an Invoice from one document. Fields that cannot be
// resolved stay unset; assembly never fails for a single document.
func (a *Assembler) Assemble(doc Document) *model.Invoice {
	inv := a.fields.Extract(doc.Text)
	inv.LineItems = a.items.Parse(doc.Table, doc.Text)
	if inv.LineItems == nil {
		inv.LineItems = []model.LineItem{}
	}
	return inv
}
