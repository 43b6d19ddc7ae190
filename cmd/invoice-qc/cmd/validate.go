package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-qc/internal/export"
	"github.com/rezonia/invoice-qc/internal/model"
	"github.com/rezonia/invoice-qc/internal/processor"
)

var validateOutput string

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate extracted invoice JSON",
	Long: `Validate invoice JSON files against the business-rule catalogue.

Each file holds one invoice object or an array of invoices, in the
shape produced by "invoice-qc extract". All invoices across all files
form one batch: duplicate detection spans the whole batch.

Rule groups, in execution order:
  1. Completeness  - required fields, party info, totals, currency
  2. Type/format   - date formats, currency membership, non-negative amounts
  3. Arithmetic    - line-item sum, net + tax = gross, due-date ordering
  4. Anomaly       - duplicate invoices, gross-total bounds

Examples:
  invoice-qc validate invoices.json
  invoice-qc validate out/*.json -f table
  invoice-qc validate invoices.json -f xlsx -o report.xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "", "Output file (default: stdout)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, isInvoiceJSONFile)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no invoice JSON files found to validate")
	}

	var invoices []*model.Invoice
	for _, file := range files {
		batch, err := readInvoiceFile(file)
		if err != nil {
			return err
		}
		invoices = append(invoices, batch...)
	}

	pipeline := processor.NewPipeline(pipelineOptions()...)
	report := pipeline.ValidateBatch(invoices)

	if err := outputReport(report, validateOutput); err != nil {
		return err
	}

	if report.Summary.InvalidInvoices > 0 {
		return fmt.Errorf("validation failed for %d of %d invoices",
			report.Summary.InvalidInvoices, report.Summary.TotalInvoices)
	}
	return nil
}

// readInvoiceFile accepts either a single invoice object or an array.
// A file that is neither is malformed top-level input and aborts the
// run; it never silently yields an empty batch.
func readInvoiceFile(path string) ([]*model.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// "null" and "[null]" unmarshal cleanly into a nil list or nil
	// elements; both are malformed input, not an empty batch.
	var list []*model.Invoice
	if err := json.Unmarshal(data, &list); err == nil {
		if list == nil {
			return nil, model.NewInputError(fmt.Sprintf("%s is not a well-formed invoice list", path), nil)
		}
		for i, inv := range list {
			if inv == nil {
				return nil, model.NewInputError(fmt.Sprintf("%s: invoice %d is null", path, i), nil)
			}
		}
		return list, nil
	}

	var single model.Invoice
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, model.NewInputError(fmt.Sprintf("%s is not a well-formed invoice list", path), err)
	}
	return []*model.Invoice{&single}, nil
}

func outputReport(report model.ValidationReport, outputFile string) error {
	if outputFormat == "xlsx" {
		if outputFile == "" {
			return fmt.Errorf("xlsx output requires -o")
		}
		data, err := export.ReportXLSX(report)
		if err != nil {
			return err
		}
		return os.WriteFile(outputFile, data, 0o644)
	}

	w, closeFn, err := outputWriter(outputFile)
	if err != nil {
		return err
	}
	defer closeFn()

	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)

	case "table":
		for _, r := range report.Results {
			if r.IsValid {
				fmt.Fprintf(w, "✓ %s: VALID\n", r.InvoiceID)
			} else {
				fmt.Fprintf(w, "✗ %s: INVALID\n", r.InvoiceID)
			}
			for _, e := range r.Errors {
				fmt.Fprintf(w, "  - [%s] %s\n", e.Rule, e.Message)
			}
		}

		fmt.Fprintf(w, "\n%d total, %d valid, %d invalid\n",
			report.Summary.TotalInvoices,
			report.Summary.ValidInvoices,
			report.Summary.InvalidInvoices)

		if len(report.Summary.ErrorsByRule) > 0 {
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RULE\tERRORS")
			rules := make([]string, 0, len(report.Summary.ErrorsByRule))
			for rule := range report.Summary.ErrorsByRule {
				rules = append(rules, rule)
			}
			sort.Strings(rules)
			for _, rule := range rules {
				fmt.Fprintf(tw, "%s\t%d\n", rule, report.Summary.ErrorsByRule[rule])
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unsupported output format for validate: %s", outputFormat)
	}
}
