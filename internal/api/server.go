// File path: internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/forgewise/intake/internal/common"
	"github.com/forgewise/intake/internal/conversation"
	"github.com/forgewise/intake/internal/delivery"
)

// TurnSubmitter runs one chat turn.
type TurnSubmitter interface {
	SubmitTurn(ctx context.Context, userMessage string, history conversation.History) (conversation.TurnResult, error)
}

// Pipeline is the delivery surface the handlers dispatch into.
type Pipeline interface {
	SendRequirementsEmail(ctx context.Context, sub delivery.RequirementsSubmission) (delivery.Result, error)
	SendContactFormEmail(ctx context.Context, sub delivery.ContactSubmission) (delivery.Result, error)
}

// Server exposes the intake API consumed by the marketing site.
type Server struct {
	router   chi.Router
	chat     TurnSubmitter
	pipeline Pipeline
}

func NewServer(chat TurnSubmitter, pipeline Pipeline) (*Server, error) {
	if chat == nil {
		return nil, fmt.Errorf("turn submitter required")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("delivery pipeline required")
	}
	srv := &Server{
		router:   chi.NewRouter(),
		chat:     chat,
		pipeline: pipeline,
	}
	srv.routes()
	common.Logger().Info("api: server ready")
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")

	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})
	s.router.Use(corsMiddleware)

	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/aiRequest", s.handleAIRequest)
	s.router.Post("/sendRequirements", s.handleSendRequirements)
	s.router.Post("/sendContactForm", s.handleSendContactForm)
	s.router.Get("/v1/logs", s.handleLogs)
}

// corsMiddleware applies the permissive cross-origin policy the public site
// relies on: any origin, POST only, preflight answered inline.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": err.Error(),
	})
}
