package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-qc/internal/processor"
	"github.com/rezonia/invoice-qc/internal/server"
)

var checkOutput string

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Extract and validate documents in one pass",
	Long: `Extract invoice records from documents and validate them as one
batch.

JSON output carries both the extracted invoices and the validation
report; table output shows the report only; xlsx writes the report
workbook.

Examples:
  invoice-qc check invoices/*.pdf
  invoice-qc check invoices/ -f table
  invoice-qc check invoices/ -f xlsx -o report.xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "Output file (default: stdout)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	docs, err := loadDocuments(args)
	if err != nil {
		return err
	}

	pipeline := processor.NewPipeline(pipelineOptions()...)
	invoices, report := pipeline.Run(docs)

	switch outputFormat {
	case "json":
		w, closeFn, err := outputWriter(checkOutput)
		if err != nil {
			return err
		}
		defer closeFn()
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		// Same JSON shape as the check API endpoint.
		if err := encoder.Encode(server.CheckResponse{Invoices: invoices, Report: report}); err != nil {
			return err
		}
	case "table", "xlsx":
		if err := outputReport(report, checkOutput); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format for check: %s", outputFormat)
	}

	if report.Summary.InvalidInvoices > 0 {
		return fmt.Errorf("validation failed for %d of %d invoices",
			report.Summary.InvalidInvoices, report.Summary.TotalInvoices)
	}
	return nil
}
