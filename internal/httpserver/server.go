package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/ingest"
	"github.com/tinytelemetry/logscope/internal/logparse"
	"github.com/tinytelemetry/logscope/internal/logsource"
	"github.com/tinytelemetry/logscope/internal/model"
	"github.com/tinytelemetry/logscope/internal/render"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "127.0.0.1:3000"

// DefaultMaxBodyBytes bounds the size of an uploaded log.
const DefaultMaxBodyBytes = 64 << 20

// ReportBuilder turns one run's records into a report. report.Aggregator
// implements it.
type ReportBuilder interface {
	Build(ctx context.Context, source string, records []model.Record, ingestStats model.IngestStats) (model.AnalysisReport, error)
}

// Config holds optional server settings.
type Config struct {
	// Metrics is mounted at GET /metrics when set.
	Metrics      http.Handler
	Dispatcher   *logparse.Dispatcher
	MaxBodyBytes int64
	Logger       *zap.Logger
}

// Server provides an HTTP API for analyzing logs and querying the last
// analyzed run.
type Server struct {
	addr       string
	store      model.RecordStore
	builder    ReportBuilder
	dispatcher *logparse.Dispatcher
	metrics    http.Handler
	maxBody    int64
	logger     *zap.Logger

	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time

	// runMu serializes analyze requests so the stored records and the
	// last report always come from the same run.
	runMu sync.Mutex

	mu   sync.RWMutex
	last *model.AnalysisReport
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, store model.RecordStore, builder ReportBuilder, conf ...Config) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr:       addr,
		store:      store,
		builder:    builder,
		dispatcher: logparse.DefaultDispatcher(),
		maxBody:    DefaultMaxBodyBytes,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		startTime:  time.Now(),
	}
	if len(conf) > 0 {
		c := conf[0]
		s.metrics = c.Metrics
		if c.Dispatcher != nil {
			s.dispatcher = c.Dispatcher
		}
		if c.MaxBodyBytes > 0 {
			s.maxBody = c.MaxBodyBytes
		}
		if c.Logger != nil {
			s.logger = c.Logger
		}
	}
	return s
}

// Handler builds the gin engine with every route mounted.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/schema", s.handleSchema)
	r.GET("/api/report", s.handleReport)
	r.POST("/api/analyze", s.handleAnalyze)
	r.POST("/api/query", s.handleQuery)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("httpserver: listen %s: %w", s.addr, err)
	}
	s.listener = listener
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("httpserver: serve failed", zap.Error(err))
		}
	}()
	s.logger.Info("httpserver: listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// LastReport returns the most recent report, if any run has completed.
func (s *Server) LastReport() (model.AnalysisReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return model.AnalysisReport{}, false
	}
	return *s.last, true
}

func (s *Server) handleHealth(c *gin.Context) {
	counts, err := s.store.TableRowCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}
	_, hasReport := s.LastReport()

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"uptime":       time.Since(s.startTime).String(),
		"record_count": counts["records"],
		"has_report":   hasReport,
	})
}

func (s *Server) handleSchema(c *gin.Context) {
	tables, err := s.store.ExecuteQuery(
		"SELECT table_name, column_name, data_type FROM information_schema.columns WHERE table_schema = 'main' AND table_name = 'records' ORDER BY ordinal_position",
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read schema metadata"})
		return
	}

	columns := make([]map[string]string, 0, len(tables))
	for _, row := range tables {
		columns = append(columns, map[string]string{
			"column": fmt.Sprintf("%v", row["column_name"]),
			"type":   fmt.Sprintf("%v", row["data_type"]),
		})
	}

	counts, err := s.store.TableRowCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read table row counts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"description": s.store.GetSchemaDescription(),
		"columns":     columns,
		"row_counts":  counts,
	})
}

// handleAnalyze reads the request body as a log, analyzes it, and makes
// its records the queryable set.
func (s *Server) handleAnalyze(c *gin.Context) {
	name := c.DefaultQuery("source", "upload")
	body := http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody)
	ctx := c.Request.Context()

	s.runMu.Lock()
	defer s.runMu.Unlock()

	src := logsource.NewReaderSource(ctx, name, body, nil, logsource.Config{Logger: s.logger})
	records, ingestStats, err := ingest.Collect(ctx, src, s.dispatcher, s.logger)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, err := s.builder.Build(ctx, name, records, ingestStats)
	if err != nil {
		s.logger.Error("httpserver: build report", zap.String("source", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.ReplaceRecords(records); err != nil {
		// The report is still valid; only SQL access to this run is lost.
		s.logger.Warn("httpserver: store records", zap.Error(err))
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("records not queryable: %v", err))
	}

	s.mu.Lock()
	s.last = &rep
	s.mu.Unlock()

	s.writeReport(c, rep)
}

func (s *Server) handleReport(c *gin.Context) {
	rep, ok := s.LastReport()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report yet; POST a log to /api/analyze"})
		return
	}
	s.writeReport(c, rep)
}

// writeReport answers with JSON unless ?format= names another renderer.
func (s *Server) writeReport(c *gin.Context, rep model.AnalysisReport) {
	format := c.Query("format")
	if format == "" || render.Format(format) == render.FormatJSON {
		c.JSON(http.StatusOK, rep)
		return
	}
	r, err := render.New(render.Format(format))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/plain; charset=utf-8")
	if err := r.Render(c.Writer, rep); err != nil {
		s.logger.Warn("httpserver: render report", zap.String("format", format), zap.Error(err))
	}
}

func (s *Server) handleQuery(c *gin.Context) {
	var req struct {
		SQL string `json:"sql" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing sql field"})
		return
	}

	results, err := s.store.ExecuteQuery(req.SQL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	columns := []string{}
	if len(results) > 0 {
		for col := range results[0] {
			columns = append(columns, col)
		}
		sort.Strings(columns)
	}

	c.JSON(http.StatusOK, gin.H{
		"columns":   columns,
		"rows":      results,
		"row_count": len(results),
	})
}
