// Package processor wires extraction and validation into a batch
// pipeline. Documents are independent pure computations; the duplicate
// tracker is the only shared state and is scoped to one run.
package processor

import (
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rezonia/invoice-qc/internal/extract"
	"github.com/rezonia/invoice-qc/internal/logger"
	"github.com/rezonia/invoice-qc/internal/model"
	"github.com/rezonia/invoice-qc/internal/normalize"
	"github.com/rezonia/invoice-qc/internal/validate"
)

// Pipeline processes batches of documents into invoices and reports.
type Pipeline struct {
	assembler *extract.Assembler
	cfg       validate.Config
	workers   int
	log       zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConfig sets the validation config.
func WithConfig(cfg validate.Config) Option {
	return func(p *Pipeline) { p.cfg = cfg }
}

// WithDateLayouts sets the date-format priority list used during
// extraction.
func WithDateLayouts(layouts ...string) Option {
	return func(p *Pipeline) {
		p.assembler = extract.NewAssembler(normalize.NewDateNormalizer(layouts...))
	}
}

// WithWorkers bounds extraction/validation parallelism.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewPipeline creates a pipeline with default config and GOMAXPROCS
// workers.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		assembler: extract.NewAssembler(nil),
		cfg:       validate.DefaultConfig(),
		workers:   runtime.GOMAXPROCS(0),
		log:       logger.WithComponent("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Assemble extracts one invoice from one document.
func (p *Pipeline) Assemble(doc extract.Document) *model.Invoice {
	return p.assembler.Assemble(doc)
}

// ExtractBatch assembles all documents concurrently. Results keep
// input order; a document that yields nothing still produces an
// (empty-field) invoice and never aborts its siblings.
func (p *Pipeline) ExtractBatch(docs []extract.Document) []*model.Invoice {
	invoices := make([]*model.Invoice, len(docs))
	p.forEach(len(docs), func(i int) {
		invoices[i] = p.assembler.Assemble(docs[i])
	})
	p.log.Debug().Int("documents", len(docs)).Msg("batch extracted")
	return invoices
}

// ValidateBatch validates all invoices concurrently against one fresh
// duplicate tracker and returns the aggregated report with results in
// input order.
func (p *Pipeline) ValidateBatch(invoices []*model.Invoice) model.ValidationReport {
	engine := validate.NewEngine(p.cfg, validate.NewDuplicateTracker())
	results := make([]model.ValidationResult, len(invoices))
	p.forEach(len(invoices), func(i int) {
		results[i] = engine.Validate(invoices[i])
	})
	report := validate.Aggregate(results)
	p.log.Info().
		Int("total", report.Summary.TotalInvoices).
		Int("valid", report.Summary.ValidInvoices).
		Int("invalid", report.Summary.InvalidInvoices).
		Msg("batch validated")
	return report
}

// Run extracts and validates a batch in one pass.
func (p *Pipeline) Run(docs []extract.Document) ([]*model.Invoice, model.ValidationReport) {
	invoices := p.ExtractBatch(docs)
	return invoices, p.ValidateBatch(invoices)
}

// forEach runs fn for each index with bounded parallelism, writing
// results by index so order is preserved.
func (p *Pipeline) forEach(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(idx)
		}(i)
	}
	wg.Wait()
}
