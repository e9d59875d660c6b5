package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/quizgen/internal/i18n"
	"github.com/pavelanni/quizgen/internal/model"
	"github.com/pavelanni/quizgen/internal/quiz"
)

// Fetcher produces validated questions for a request.
type Fetcher interface {
	Fetch(ctx context.Context, req model.Request) ([]model.Question, error)
}

// Counter reports the current usage count.
type Counter interface {
	Count() int
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	quiz     Fetcher
	counter  Counter
	defaults model.Request
}

// New creates a new Handler. defaults fill in query parameters the caller
// leaves out.
func New(f Fetcher, c Counter, defaults model.Request) *Handler {
	return &Handler{quiz: f, counter: c, defaults: defaults}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/questions", h.handleQuestions)
	r.Get("/usage", h.handleUsage)
	r.Get("/healthz", h.handleHealth)
}

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	req := h.defaults
	q := r.URL.Query()
	if v := q.Get("topic"); v != "" {
		req.Topic = v
	}
	if v := q.Get("difficulty"); v != "" {
		req.Difficulty = v
	}
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrBadCount"))
			return
		}
		req.Count = n
	}

	questions, err := h.quiz.Fetch(r.Context(), req)
	if err != nil {
		slog.Error("generate questions", "topic", req.Topic, "error", err)
		msgID := "ErrUpstream"
		if errors.Is(err, quiz.ErrParse) || errors.Is(err, quiz.ErrMalformed) {
			msgID = "ErrMalformed"
		}
		writeError(w, http.StatusBadGateway, i18n.T(r.Context(), msgID))
		return
	}

	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	n := 0
	if h.counter != nil {
		n = h.counter.Count()
	}
	writeJSON(w, http.StatusOK, model.UsageReport{Count: n})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
