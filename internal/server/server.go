// Package server exposes the organizer over a local HTTP API for the
// browser extension.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/nikbrunner/tidymark/internal/ai"
	"github.com/nikbrunner/tidymark/internal/bookmarks"
	"github.com/nikbrunner/tidymark/internal/config"
	"github.com/nikbrunner/tidymark/internal/model"
	"github.com/nikbrunner/tidymark/internal/organizer"
)

// Params holds parameters for creating a Server.
type Params struct {
	Service  *organizer.Service
	Tree     bookmarks.Tree
	Settings config.Settings
	// Persist is called after a plan has been applied. Optional.
	Persist func(context.Context) error
	Logger  *zap.Logger
}

// Server serves the preview and apply operations as JSON.
type Server struct {
	svc      *organizer.Service
	tree     bookmarks.Tree
	settings config.Settings
	persist  func(context.Context) error
	logger   *zap.Logger

	// Applies run one at a time.
	applyMu sync.Mutex
}

// ScopeRequest is the body of the preview endpoints.
type ScopeRequest struct {
	ScopeIDs []string `json:"scopeIds"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a Server.
func New(params Params) *Server {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc:      params.Service,
		tree:     params.Tree,
		settings: params.Settings,
		persist:  params.Persist,
		logger:   logger,
	}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/health", s.health).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tree", s.getTree).Methods("GET")
	api.HandleFunc("/search", s.search).Methods("GET")
	api.HandleFunc("/preview/rules", s.previewRules).Methods("POST")
	api.HandleFunc("/preview/refine", s.previewRefine).Methods("POST")
	api.HandleFunc("/preview/infer", s.previewInfer).Methods("POST")
	api.HandleFunc("/apply", s.apply).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         86400,
	})
	return c.Handler(router)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.tree.GetTree(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query parameter 'q' is required"})
		return
	}
	nodes, err := s.tree.Search(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if nodes == nil {
		nodes = []model.Node{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) previewRules(w http.ResponseWriter, r *http.Request) {
	var req ScopeRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	plan, err := s.svc.PreviewByRules(r.Context(), s.settings, req.ScopeIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) previewRefine(w http.ResponseWriter, r *http.Request) {
	plan, ok := decodePlan(w, r)
	if !ok {
		return
	}
	refined, err := s.svc.RefinePlanWithAI(r.Context(), s.settings, plan)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refined)
}

func (s *Server) previewInfer(w http.ResponseWriter, r *http.Request) {
	var req ScopeRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	plan, err := s.svc.PreviewByAIInference(r.Context(), s.settings, req.ScopeIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request) {
	plan, ok := decodePlan(w, r)
	if !ok {
		return
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	result, err := s.svc.ApplyPlan(r.Context(), s.settings, plan)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.persist != nil {
		if err := s.persist(r.Context()); err != nil {
			s.writeError(w, fmt.Errorf("save bookmarks: %w", err))
			return
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeOptional decodes a JSON body if there is one.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func decodePlan(w http.ResponseWriter, r *http.Request) (*model.Plan, bool) {
	var plan model.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid plan: " + err.Error()})
		return nil, false
	}
	if plan.Categories == nil {
		plan.Categories = map[string]*model.CategoryBucket{}
	}
	return &plan, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var (
		cfgErr  *ai.ConfigError
		httpErr *ai.HTTPError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.Is(err, bookmarks.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, organizer.ErrNoAssignments):
		return http.StatusUnprocessableEntity
	case errors.As(err, &httpErr), errors.Is(err, ai.ErrInvalidResponse):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}
