package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-qc/internal/extract"
	"github.com/rezonia/invoice-qc/internal/model"
	"github.com/rezonia/invoice-qc/internal/parser/pdf"
)

// collectFiles expands args (paths, globs, directories) into a flat
// list of supported files.
func collectFiles(args []string, supported func(string) bool) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}

			if info.IsDir() {
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && supported(path) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			} else {
				files = append(files, arg)
			}
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() && supported(match) {
				files = append(files, match)
			}
		}
	}

	return files, nil
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt":
		return true
	default:
		return false
	}
}

func isInvoiceJSONFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}

// loadDocument reads one source file into a Document, extracting page
// text from PDFs first.
func loadDocument(extractor *pdf.Extractor, path string) (extract.Document, error) {
	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		f, err := os.Open(path)
		if err != nil {
			return extract.Document{}, fmt.Errorf("failed to read file: %w", err)
		}
		defer f.Close()

		text, err := extractor.ExtractText(f)
		if err != nil {
			return extract.Document{}, fmt.Errorf("pdf extraction failed for %s: %w", path, err)
		}
		return extract.Document{Name: path, Text: text}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Document{}, fmt.Errorf("failed to read file: %w", err)
	}
	return extract.Document{Name: path, Text: string(data)}, nil
}

// outputWriter opens the -o target, or stdout when unset.
func outputWriter(outputFile string) (*os.File, func(), error) {
	if outputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func strOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func dateOr(d *model.Date, fallback string) string {
	if d == nil {
		return fallback
	}
	return d.String()
}

func decOr(d *decimal.Decimal, fallback string) string {
	if d == nil {
		return fallback
	}
	return d.StringFixed(2)
}

func escapeCSV(s string) string {
	if strings.Contains(s, ",") || strings.Contains(s, "\"") || strings.Contains(s, "\n") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}
