// Package server exposes the extraction and validation pipeline over
// HTTP. Handlers contain no domain logic; they decode, delegate, and
// encode.
package server

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rezonia/invoice-qc/internal/extract"
	"github.com/rezonia/invoice-qc/internal/logger"
	"github.com/rezonia/invoice-qc/internal/model"
	"github.com/rezonia/invoice-qc/internal/parser/pdf"
	"github.com/rezonia/invoice-qc/internal/processor"
	"github.com/rezonia/invoice-qc/internal/validate"
)

// Config holds server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
	Validation   validate.Config
	DateLayouts  []string
	Workers      int
}

// Server is the HTTP API server.
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	pdf      *pdf.Extractor
	log      zerolog.Logger
}

// NewServer creates a new API server.
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	opts := []processor.Option{processor.WithConfig(config.Validation)}
	if len(config.DateLayouts) > 0 {
		opts = append(opts, processor.WithDateLayouts(config.DateLayouts...))
	}
	if config.Workers > 0 {
		opts = append(opts, processor.WithWorkers(config.Workers))
	}

	s := &Server{
		config:   config,
		router:   router,
		pipeline: processor.NewPipeline(opts...),
		pdf:      pdf.NewExtractor(),
		log:      logger.WithComponent("server"),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/validate", s.handleValidate)
		v1.POST("/extract", s.handleExtract)
		v1.POST("/check", s.handleCheck)
		v1.POST("/extract/pdf", s.handleExtractPDF)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleValidate validates a JSON invoice list. Malformed top-level
// input is a 400 with a structured error, never an empty report.
func (s *Server) handleValidate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	invoices, err := decodeInvoiceList(body)
	if err != nil {
		var inputErr *model.InputError
		if errors.As(err, &inputErr) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   inputErr.Message,
				Details: detailOf(inputErr),
			})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	report := s.pipeline.ValidateBatch(invoices)
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleExtract(c *gin.Context) {
	docs, ok := s.bindDocuments(c)
	if !ok {
		return
	}
	invoices := s.pipeline.ExtractBatch(docs)
	c.JSON(http.StatusOK, ExtractResponse{Invoices: invoices})
}

func (s *Server) handleCheck(c *gin.Context) {
	docs, ok := s.bindDocuments(c)
	if !ok {
		return
	}
	invoices, report := s.pipeline.Run(docs)
	c.JSON(http.StatusOK, CheckResponse{Invoices: invoices, Report: report})
}

// handleExtractPDF accepts a raw PDF body and returns the extracted
// invoice.
func (s *Server) handleExtractPDF(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	text, err := s.pdf.ExtractText(bytes.NewReader(body))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "PDF text extraction failed",
			Details: err.Error(),
		})
		return
	}

	invoice := s.pipeline.Assemble(extract.Document{Text: text})
	c.JSON(http.StatusOK, ExtractResponse{Invoices: []*model.Invoice{invoice}})
}

func (s *Server) bindDocuments(c *gin.Context) ([]extract.Document, bool) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "body is not a well-formed document list",
			Details: err.Error(),
		})
		return nil, false
	}
	return req.Documents, true
}

func detailOf(err *model.InputError) string {
	if err.Cause == nil {
		return ""
	}
	return err.Cause.Error()
}
