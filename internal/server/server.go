// Package server exposes the diary service as a local JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/swamp-dev/mindcare/internal/analysis"
	"github.com/swamp-dev/mindcare/internal/diary"
	"github.com/swamp-dev/mindcare/internal/journal"
	"github.com/swamp-dev/mindcare/internal/session"
	"github.com/swamp-dev/mindcare/internal/stats"
	"github.com/swamp-dev/mindcare/internal/store"
)

// maxBodyBytes caps request bodies; a day of journaling fits comfortably.
const maxBodyBytes = 1 << 20

// Options configures the HTTP layer.
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Server routes API requests to a diary.Service.
type Server struct {
	svc    *diary.Service
	opts   Options
	logger *slog.Logger
	router chi.Router
}

// New builds the router.
func New(svc *diary.Service, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	s := &Server{svc: svc, opts: opts, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.logRequests)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/journals", func(r chi.Router) {
			r.Get("/", s.listJournals)
			r.Post("/", s.createJournal)
			r.Get("/export", s.exportJournals)
			r.Get("/{id}", s.getJournal)
			r.Patch("/{id}", s.updateJournal)
			r.Delete("/{id}", s.deleteJournal)
		})
		r.Get("/stats", s.getStats)
		r.Get("/insights", s.getInsights)
		r.Get("/user", s.getUser)
		r.Post("/user", s.createUser)
		r.Put("/user", s.renameUser)
	})

	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down api: %w", err)
	}
	s.logger.Info("api stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// response is the envelope of every JSON reply.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response{Success: status < 400, Message: msg})
}

// writeError maps domain errors to status codes. Unknown errors are logged and
// reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, journal.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, journal.ErrValidation), errors.Is(err, session.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeMessage(w, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		// Client is gone; nothing useful to send.
		s.logger.Debug("request cancelled", "path", r.URL.Path)
	case errors.Is(err, store.ErrStorageFailure):
		s.logger.Error("storage failed", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInsufficientStorage, "storage unavailable: could not read or save your journal")
	case errors.Is(err, stats.ErrMalformedEntry):
		s.logger.Error("stored entries cannot be aggregated", "error", err)
		writeMessage(w, http.StatusInternalServerError, "stored entries are malformed")
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", journal.ErrValidation, err)
	}
	return nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", journal.ErrValidation, name)
	}
	return n, nil
}

func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, err := s.svc.Entries(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) createJournal(w http.ResponseWriter, r *http.Request) {
	var texts analysis.DayTexts
	if err := decodeBody(w, r, &texts); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.Record(r.Context(), texts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) getJournal(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) updateJournal(w http.ResponseWriter, r *http.Request) {
	var p journal.Patch
	if err := decodeBody(w, r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.svc.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// deleteJournal is idempotent unless ?strict=true, which turns a missing entry
// into a 404.
func (s *Server) deleteJournal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := s.svc.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !deleted && r.URL.Query().Get("strict") == "true" {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("entry %s: %v", id, journal.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) exportJournals(w http.ResponseWriter, r *http.Request) {
	md, err := s.svc.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	window, err := intParam(r, "window")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.svc.Dashboard(r.Context(), window)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) getInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.svc.Insights(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.User(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.svc.SignIn(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) renameUser(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.svc.RenameUser(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
