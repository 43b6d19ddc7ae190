package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-qc/internal/model"
)

func TestDate_JSONRoundTrip(t *testing.T) {
	d := model.NewDate(2024, time.March, 15)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-15"`, string(data))

	var back model.Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Valid())
	assert.True(t, d.Time.Equal(back.Time))
}

func TestDate_UnmarshalKeepsRawOnFailure(t *testing.T) {
	var d model.Date
	require.NoError(t, json.Unmarshal([]byte(`"not a date"`), &d))

	assert.False(t, d.Valid())
	assert.Equal(t, "not a date", d.Raw)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"not a date"`, string(data))
}

func TestDate_UnmarshalAcceptsGermanFormat(t *testing.T) {
	var d model.Date
	require.NoError(t, json.Unmarshal([]byte(`"22.05.2024"`), &d))

	assert.True(t, d.Valid())
	assert.Equal(t, "2024-05-22", d.String())
}

func TestDate_Before(t *testing.T) {
	earlier := model.NewDate(2024, time.January, 1)
	later := model.NewDate(2024, time.January, 2)

	assert.True(t, earlier.Before(later))
	assert.False(t, later.Before(earlier))
	assert.False(t, earlier.Before(earlier))
}

func TestInvoice_MarshalOmitsUnsetFields(t *testing.T) {
	inv := &model.Invoice{
		InvoiceNumber: model.String("INV-1"),
		NetTotal:      model.Dec(decimal.RequireFromString("100.50")),
		LineItems:     []model.LineItem{},
	}

	data, err := json.Marshal(inv)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "INV-1", m["invoice_number"])
	assert.NotContains(t, m, "seller_name")
	assert.NotContains(t, m, "gross_total")
	assert.Contains(t, m, "line_items")
}

func TestInvoice_AmountsMarshalAsNumbers(t *testing.T) {
	inv := &model.Invoice{
		GrossTotal: model.Dec(decimal.RequireFromString("119.00")),
		LineItems:  []model.LineItem{},
	}

	data, err := json.Marshal(inv)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"gross_total":119`)
}

func TestInvoice_ID(t *testing.T) {
	inv := &model.Invoice{InvoiceNumber: model.String("INV-42")}
	assert.Equal(t, "INV-42", inv.ID())

	assert.Equal(t, model.FallbackID, (&model.Invoice{}).ID())
	assert.Equal(t, model.FallbackID, (&model.Invoice{InvoiceNumber: model.String("")}).ID())
}
