// Package pdf recovers page text from PDF invoices so the extraction
// pipeline can treat them like any other text source.
package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Extractor pulls text out of PDF page content streams. It reads
// literal show-text strings only: CID-encoded fonts and scanned images
// yield little or no text, which downstream completeness rules will
// surface.
type Extractor struct {
	conf *pdfmodel.Configuration
}

// NewExtractor creates an extractor with relaxed validation, matching
// how permissive real-world invoice PDFs need us to be.
func NewExtractor() *Extractor {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &Extractor{conf: conf}
}

// ExtractText returns the concatenated text of all pages, one page per
// paragraph.
func (e *Extractor) ExtractText(rs io.ReadSeeker) (string, error) {
	ctx, err := api.ReadContext(rs, e.conf)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return "", fmt.Errorf("validate pdf: %w", err)
	}
	if err := api.OptimizeContext(ctx); err != nil {
		return "", fmt.Errorf("optimize pdf: %w", err)
	}

	var pages []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", pageNr, err)
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", pageNr, err)
		}
		pages = append(pages, decodeContent(content))
	}
	return strings.Join(pages, "\n"), nil
}

// decodeContent recovers text from a content stream by collecting
// literal strings and inserting line breaks at text-positioning
// operators.
func decodeContent(content []byte) string {
	var b strings.Builder
	var token []byte

	flushToken := func() {
		switch string(token) {
		case "Td", "TD", "T*", "ET":
			b.WriteByte('\n')
		}
		token = token[:0]
	}

	for i := 0; i < len(content); i++ {
		c := content[i]
		if c == '(' {
			flushToken()
			s, next := readLiteralString(content, i)
			b.WriteString(s)
			i = next
			continue
		}
		if isRegular(c) {
			token = append(token, c)
			continue
		}
		flushToken()
	}
	flushToken()

	// Collapse runs of blank lines left by positioning operators.
	lines := strings.Split(b.String(), "\n")
	var out []string
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

func isRegular(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '*' || c == '\''
}

// readLiteralString reads a PDF literal string starting at the '(' at
// position start and returns its decoded value plus the index of the
// closing parenthesis.
func readLiteralString(content []byte, start int) (string, int) {
	var b strings.Builder
	depth := 0
	i := start
	for ; i < len(content); i++ {
		c := content[i]
		switch c {
		case '\\':
			if i+1 >= len(content) {
				return b.String(), i
			}
			i++
			switch content[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r', '\n':
				// line continuation or carriage return, drop
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(content[i] - '0')
				for n := 0; n < 2 && i+1 < len(content) && content[i+1] >= '0' && content[i+1] <= '7'; n++ {
					i++
					v = v*8 + int(content[i]-'0')
				}
				b.WriteByte(byte(v))
			default:
				b.WriteByte(content[i])
			}
		case '(':
			depth++
			if depth > 1 {
				b.WriteByte(c)
			}
		case ')':
			depth--
			if depth == 0 {
				return b.String(), i
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), i
}
