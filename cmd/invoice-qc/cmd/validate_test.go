package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-qc/internal/model"
)

func writeInvoiceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoices.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadInvoiceFile_ArrayAndSingleObject(t *testing.T) {
	batch, err := readInvoiceFile(writeInvoiceFile(t, `[{"invoice_number": "INV-1"}, {"invoice_number": "INV-2"}]`))
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "INV-1", batch[0].ID())
	assert.Equal(t, "INV-2", batch[1].ID())

	batch, err = readInvoiceFile(writeInvoiceFile(t, `{"invoice_number": "INV-3"}`))
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "INV-3", batch[0].ID())
}

func TestReadInvoiceFile_EmptyArray(t *testing.T) {
	batch, err := readInvoiceFile(writeInvoiceFile(t, `[]`))
	require.NoError(t, err)
	assert.NotNil(t, batch)
	assert.Empty(t, batch)
}

// Inputs that decode without a JSON error but are not invoice lists
// must fail as structured input errors, never reach validation as nil
// invoices or shrink to a silent empty batch.
func TestReadInvoiceFile_MalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"top-level null", `null`},
		{"null element", `[null]`},
		{"null among invoices", `[null, {"invoice_number": "INV-1"}]`},
		{"trailing null", `[{"invoice_number": "INV-1"}, null]`},
		{"not json", `{"invoice_number":`},
		{"scalar", `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := readInvoiceFile(writeInvoiceFile(t, tt.content))
			require.Error(t, err)
			assert.Nil(t, batch)

			var inputErr *model.InputError
			assert.True(t, errors.As(err, &inputErr))
		})
	}
}
