package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sandevgo/vidquery/internal/core"
	"github.com/sandevgo/vidquery/internal/providers/market"
	"github.com/sandevgo/vidquery/internal/service/pipeline"
	"github.com/sandevgo/vidquery/pkg/log"
)

type QueryResolver interface {
	Resolve(ctx context.Context, req pipeline.Request) core.Answer
}

type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (market.Quote, error)
}

type Handler struct {
	resolver QueryResolver
	quotes   QuoteProvider
	logger   zerolog.Logger
}

func NewHandler(resolver QueryResolver, quotes QuoteProvider, logger zerolog.Logger) http.Handler {
	h := &Handler{resolver: resolver, quotes: quotes, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/query", h.handleQuery)
	mux.HandleFunc("GET /v1/quotes/{symbol}", h.handleQuote)
	mux.HandleFunc("GET /healthz", h.handleHealth)

	return h.withLogging(mux)
}

type queryRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversationId"`
	TitleHint      string `json:"titleHint"`
}

type queryResponse struct {
	Answer         string           `json:"answer"`
	References     []core.Reference `json:"references"`
	Source         string           `json:"source"`
	Confidence     float64          `json:"confidence"`
	ConversationID string           `json:"conversationId"`
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	ans := h.resolver.Resolve(r.Context(), pipeline.Request{
		Question:       req.Question,
		ConversationID: req.ConversationID,
		TitleHint:      req.TitleHint,
	})

	refs := ans.References
	if refs == nil {
		refs = []core.Reference{}
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Answer:         ans.Text,
		References:     refs,
		Source:         ans.Source.String(),
		Confidence:     ans.Confidence,
		ConversationID: req.ConversationID,
	})
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	if h.quotes == nil {
		writeError(w, http.StatusNotFound, "quotes are not configured")
		return
	}

	q, err := h.quotes.Quote(r.Context(), r.PathValue("symbol"))
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("quote lookup failed")
		writeError(w, http.StatusBadGateway, "quote lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := h.logger.WithContext(r.Context())

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		h.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
