// Package http exposes the budget tracker as a JSON API.
//
// Handlers stay thin: parsing and status mapping live here, all domain
// rules live in the services and the budget engine. Month views are the
// only expensive read, so they sit behind a small LRU cache that writes
// invalidate.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bilancio/internal/budget"
	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

const (
	monthViewCacheSize = 24
	monthViewCacheTTL  = 5 * time.Minute
)

// Server wires the services and the budget engine into an http.Server.
type Server struct {
	httpServer *http.Server

	categories   *services.CategoryService
	transactions *services.TransactionService
	cards        *services.CardService
	engine       *budget.Engine
	repo         *storage.SQLiteRepository

	monthViews   *cache.LRUCache[[]core.BudgetRow]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	headers      *security.HeadersMiddleware
	tracer       *trace.Middleware
	logger       *log.Logger
}

func NewServer(port int, repo *storage.SQLiteRepository, engine *budget.Engine, publisher services.SyncPublisher) *Server {
	detector := security.NewDetector()

	s := &Server{
		categories:   services.NewCategoryService(repo),
		transactions: services.NewTransactionService(repo, publisher),
		cards:        services.NewCardService(repo),
		engine:       engine,
		repo:         repo,
		monthViews:   cache.NewLRUCache[[]core.BudgetRow](monthViewCacheSize, monthViewCacheTTL),
		cacheManager: cache.NewManager(),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     detector,
		headers:      security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		tracer:       trace.NewMiddleware(detector.ExtractClientIP),
		logger:       log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP),
	}

	s.cacheManager.Register(s.monthViews)
	s.cacheManager.StartCleanup(time.Minute)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/months/{month}", s.handleMonthView)
	mux.HandleFunc("PUT /api/budgets", s.handleUpsertBudget)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/cards", s.handleListCards)
	mux.HandleFunc("POST /api/cards", s.handleCreateCard)
	mux.HandleFunc("GET /api/cards/{id}", s.handleGetCard)
	mux.HandleFunc("PUT /api/cards/{id}", s.handleUpdateCard)
	mux.HandleFunc("DELETE /api/cards/{id}", s.handleDeleteCard)

	var h http.Handler = mux
	h = s.logSuspicious(h)
	h = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(h)
	h = log.Middleware(s.logger)(h)
	h = s.limiter.Middleware(s.detector.ExtractClientIP, nil)(h)
	h = s.headers.Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

// logSuspicious flags scanner traffic without blocking it; the rate
// limiter is what actually pushes back.
func (s *Server) logSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			fields := log.NewFields().WithClientIP(s.detector.ExtractClientIP(r))
			fields[log.FieldMethod] = r.Method
			fields[log.FieldPath] = r.URL.Path
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request pattern", fields.ToSlice()...)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.cacheManager.Stop()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
