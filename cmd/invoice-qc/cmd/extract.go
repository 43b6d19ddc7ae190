package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-qc/internal/extract"
	"github.com/rezonia/invoice-qc/internal/model"
	"github.com/rezonia/invoice-qc/internal/parser/pdf"
	"github.com/rezonia/invoice-qc/internal/processor"
)

var (
	extractOutput   string
	extractSeparate bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract invoice records from documents",
	Long: `Extract structured invoice records from one or more documents.

Supported inputs:
  - PDF files (.pdf): page text is recovered from the content streams
  - Text files (.txt): used as page text directly

Fields that cannot be located are left unset in the output; run
"invoice-qc validate" or "invoice-qc check" to see the consequences.

Examples:
  invoice-qc extract invoice.pdf
  invoice-qc extract invoices/ -o invoices.json
  invoice-qc extract *.pdf --separate -o out/invoices.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file (default: stdout)")
	extractCmd.Flags().BoolVar(&extractSeparate, "separate", false, "Write one JSON file per invoice")
}

func runExtract(cmd *cobra.Command, args []string) error {
	docs, err := loadDocuments(args)
	if err != nil {
		return err
	}

	pipeline := processor.NewPipeline(pipelineOptions()...)
	invoices := pipeline.ExtractBatch(docs)

	if extractSeparate {
		return writeSeparateInvoices(invoices)
	}
	return outputInvoices(invoices)
}

func loadDocuments(args []string) ([]extract.Document, error) {
	files, err := collectFiles(args, isDocumentFile)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to extract")
	}

	extractor := pdf.NewExtractor()
	docs := make([]extract.Document, 0, len(files))
	for _, file := range files {
		doc, err := loadDocument(extractor, file)
		if err != nil {
			// One unreadable document must not abort its siblings.
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func writeSeparateInvoices(invoices []*model.Invoice) error {
	dir := filepath.Dir(extractOutput)
	if extractOutput == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for i, inv := range invoices {
		name := inv.ID()
		if name == model.FallbackID {
			name = fmt.Sprintf("invoice-%03d", i+1)
		}
		path := filepath.Join(dir, name+".json")
		data, err := json.MarshalIndent(inv, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func outputInvoices(invoices []*model.Invoice) error {
	w, closeFn, err := outputWriter(extractOutput)
	if err != nil {
		return err
	}
	defer closeFn()

	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(invoices)

	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NUMBER\tDATE\tSELLER\tBUYER\tCURRENCY\tGROSS\tITEMS")
		fmt.Fprintln(tw, "------\t----\t------\t-----\t--------\t-----\t-----")
		for _, inv := range invoices {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
				strOr(inv.InvoiceNumber, "-"),
				dateOr(inv.InvoiceDate, "-"),
				strOr(inv.SellerName, "-"),
				strOr(inv.BuyerName, "-"),
				strOr(inv.Currency, "-"),
				decOr(inv.GrossTotal, "-"),
				len(inv.LineItems),
			)
		}
		return tw.Flush()

	case "csv":
		fmt.Fprintln(w, "invoice_number,invoice_date,due_date,seller_name,buyer_name,currency,net_total,tax_amount,gross_total,line_items")
		for _, inv := range invoices {
			fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%s,%s,%s,%d\n",
				strOr(inv.InvoiceNumber, ""),
				dateOr(inv.InvoiceDate, ""),
				dateOr(inv.DueDate, ""),
				escapeCSV(strOr(inv.SellerName, "")),
				escapeCSV(strOr(inv.BuyerName, "")),
				strOr(inv.Currency, ""),
				decOr(inv.NetTotal, ""),
				decOr(inv.TaxAmount, ""),
				decOr(inv.GrossTotal, ""),
				len(inv.LineItems),
			)
		}
		return nil

	default:
		return fmt.Errorf("unsupported output format for extract: %s", outputFormat)
	}
}
