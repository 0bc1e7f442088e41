package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
	"github.com/soporte-labs/persona-assistant/internal/core/ports"
	"github.com/soporte-labs/persona-assistant/internal/core/usecase"
)

type Router struct {
	contextUC ports.ContextBuilder
	logger    *slog.Logger
}

func NewRouter(contextUC ports.ContextBuilder, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		contextUC: contextUC,
		logger:    logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/context", rt.buildContext)
	mux.HandleFunc("/v1/prompt", rt.buildPrompt)
	mux.HandleFunc("/v1/verify", rt.verifyAnswer)
	return requestIDMiddleware(accessLogMiddleware(rt.logger, mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type contextRequest struct {
	PersonaID string `json:"persona_id"`
	Query     string `json:"query"`
}

func decodeContextRequest(w http.ResponseWriter, r *http.Request) (contextRequest, bool) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return req, false
	}
	if strings.TrimSpace(req.PersonaID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "persona_id is required"})
		return req, false
	}
	return req, true
}

func (rt *Router) buildContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req, ok := decodeContextRequest(w, r)
	if !ok {
		return
	}

	result, err := rt.contextUC.BuildContext(r.Context(), req.PersonaID, req.Query)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type promptResponse struct {
	Decision       domain.Decision   `json:"decision"`
	Reason         string            `json:"reason,omitempty"`
	Confidence     domain.Confidence `json:"confidence"`
	ResponsePrefix string            `json:"response_prefix"`
	Prompt         string            `json:"prompt"`
	Metrics        any               `json:"metrics"`
}

// buildPrompt runs the same pipeline as /v1/context but returns the fused
// chunks already rendered as the generation prompt block.
func (rt *Router) buildPrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req, ok := decodeContextRequest(w, r)
	if !ok {
		return
	}

	result, err := rt.contextUC.BuildContext(r.Context(), req.PersonaID, req.Query)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, promptResponse{
		Decision:       result.Decision,
		Reason:         result.Reason,
		Confidence:     result.Confidence,
		ResponsePrefix: result.ResponsePrefix,
		Prompt:         usecase.FormatChunksForPrompt(result.Chunks),
		Metrics:        result.Metrics,
	})
}

type verifyRequest struct {
	Answer string                  `json:"answer"`
	Chunks []domain.RetrievedChunk `json:"chunks"`
}

type verifyResponse struct {
	Answer         string  `json:"answer"`
	RelevanceFlag  *string `json:"relevance_flag"`
	GroundingFlag  *string `json:"grounding_flag"`
	GroundingScore float64 `json:"grounding_score"`
	CitationsFound int     `json:"citations_found"`
	CitationsTotal int     `json:"citations_total"`
}

// verifyAnswer parses the generated answer's reflection markers and scores
// its grounding against the chunks the caller retrieved earlier.
func (rt *Router) verifyAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Answer) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "answer is required"})
		return
	}

	parsed := usecase.ParseSelfRAGTokens(req.Answer)
	report := usecase.EvaluateGrounding(parsed.Answer, req.Chunks)

	writeJSON(w, http.StatusOK, verifyResponse{
		Answer:         parsed.Answer,
		RelevanceFlag:  parsed.RelevanceFlag,
		GroundingFlag:  parsed.GroundingFlag,
		GroundingScore: report.GroundingScore,
		CitationsFound: report.CitationsFound,
		CitationsTotal: report.CitationsTotal,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
