package server

import (
	"github.com/rezonia/invoice-qc/internal/extract"
	"github.com/rezonia/invoice-qc/internal/model"
)

// ExtractRequest carries documents for the extract and check
// endpoints.
type ExtractRequest struct {
	Documents []extract.Document `json:"documents"`
}

// ExtractResponse is the response for the extract endpoints.
type ExtractResponse struct {
	Invoices []*model.Invoice `json:"invoices"`
}

// CheckResponse is the response for the check endpoint.
type CheckResponse struct {
	Invoices []*model.Invoice       `json:"invoices"`
	Report   model.ValidationReport `json:"report"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
