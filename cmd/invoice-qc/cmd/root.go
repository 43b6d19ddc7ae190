// Package cmd implements the invoice-qc command line interface.
package cmd

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-qc/internal/logger"
	"github.com/rezonia/invoice-qc/internal/processor"
	"github.com/rezonia/invoice-qc/internal/validate"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	logFormat    string
	outputFormat string
	tolerance    float64
	maxAmount    float64
	currencies   []string
	dateFormats  []string
)

var rootCmd = &cobra.Command{
	Use:   "invoice-qc",
	Short: "Extract and validate invoice data",
	Long: `Invoice QC extracts structured invoice records from document text
and checks them against a fixed catalogue of business-validity rules.

Examples:
  # Extract invoices from PDFs into JSON
  invoice-qc extract invoices/ -o invoices.json

  # Validate previously extracted invoice JSON
  invoice-qc validate invoices.json

  # Extract and validate in one pass
  invoice-qc check invoices/*.pdf -f table

  # Run the HTTP API
  invoice-qc serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.StringVar(&logFormat, "log-format", "console", "Log format (console, json)")
	pf.StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table, csv, xlsx)")
	pf.Float64Var(&tolerance, "tolerance", 0.02, "Arithmetic tolerance for amount checks (env: INVOICE_QC_TOLERANCE)")
	pf.Float64Var(&maxAmount, "max-amount", 1_000_000, "Gross-total ceiling (env: INVOICE_QC_MAX_AMOUNT)")
	pf.StringSliceVar(&currencies, "currency", validate.DefaultCurrencies, "Accepted currency codes (env: INVOICE_QC_CURRENCIES)")
	pf.StringSliceVar(&dateFormats, "date-format", nil, "Date layout priority list, Go reference-time layouts")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// A .env file is optional.
	_ = godotenv.Load()

	// Environment fills in whatever the flags left at their defaults.
	pf := rootCmd.PersistentFlags()
	if !pf.Changed("tolerance") {
		if v, err := strconv.ParseFloat(os.Getenv("INVOICE_QC_TOLERANCE"), 64); err == nil {
			tolerance = v
		}
	}
	if !pf.Changed("max-amount") {
		if v, err := strconv.ParseFloat(os.Getenv("INVOICE_QC_MAX_AMOUNT"), 64); err == nil {
			maxAmount = v
		}
	}
	if !pf.Changed("currency") {
		if v := os.Getenv("INVOICE_QC_CURRENCIES"); v != "" {
			currencies = strings.Split(v, ",")
		}
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	_ = logger.Setup(level, logFormat)
}

func validationConfig() validate.Config {
	return validate.Config{
		Tolerance:  decimal.NewFromFloat(tolerance),
		MaxAmount:  decimal.NewFromFloat(maxAmount),
		Currencies: validate.CurrencySet(currencies),
	}
}

func pipelineOptions() []processor.Option {
	opts := []processor.Option{processor.WithConfig(validationConfig())}
	if len(dateFormats) > 0 {
		opts = append(opts, processor.WithDateLayouts(dateFormats...))
	}
	return opts
}
