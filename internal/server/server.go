package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"aeroScope/internal/analysis"
	"aeroScope/internal/snapshot"
	"aeroScope/internal/storage"
)

const (
	maxHistogramBuckets = 500
	maxPageSize         = 500
	maxBodyBytes        = 1 << 16
)

// Analyzer ranks pools from the yields feed. *analysis.Service satisfies it.
type Analyzer interface {
	AnalyzeAll(ctx context.Context, opts analysis.Options) (analysis.Result, error)
	FindBySymbol(ctx context.Context, symbol string) (analysis.PoolAnalysis, float64, error)
}

// Server exposes pool snapshots and the simulator over HTTP.
type Server struct {
	pools    snapshot.Getter
	sink     storage.Storage
	chainID  uint64
	poolList []common.Address
	workers  int
	analyzer Analyzer
	logger   *zap.Logger
	now      func() time.Time
	router   *mux.Router
}

// Option configures optional collaborators.
type Option func(*Server)

// WithPoolList sets the pools behind GET /api/pools.
func WithPoolList(pools []common.Address) Option {
	return func(s *Server) { s.poolList = pools }
}

// WithWorkers bounds how many pools the listing fetches at once.
func WithWorkers(n int) Option {
	return func(s *Server) { s.workers = n }
}

// WithAnalyzer enables the /api/analyze routes.
func WithAnalyzer(a Analyzer) Option {
	return func(s *Server) { s.analyzer = a }
}

// New builds the router. sink may be nil, in which case simulations are not recorded.
func New(pools snapshot.Getter, sink storage.Storage, chainID uint64, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		pools:   pools,
		sink:    sink,
		chainID: chainID,
		logger:  logger,
		now:     time.Now,
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/pools", s.handleListPools).Methods(http.MethodGet)
	api.HandleFunc("/pools/{address}", s.handlePool).Methods(http.MethodGet)
	api.HandleFunc("/pools/{address}/histogram", s.handleHistogram).Methods(http.MethodGet)
	api.HandleFunc("/simulate", s.handleSimulate).Methods(http.MethodPost)
	api.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodGet)
	api.HandleFunc("/analyze", s.handleAnalyzeInvestment).Methods(http.MethodPost)

	s.router.Use(s.loggingMiddleware)
}

// ServeHTTP lets the server be mounted or tested directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
