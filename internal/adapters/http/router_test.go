package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

type contextBuilderFake struct {
	result *domain.RetrievalContext
	err    error

	lastPersonaID string
	lastQuery     string
}

func (f *contextBuilderFake) BuildContext(_ context.Context, personaID, query string) (*domain.RetrievalContext, error) {
	f.lastPersonaID = personaID
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestRouter(fake *contextBuilderFake) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(fake, logger).Handler()
}

func proceedResult() *domain.RetrievalContext {
	return &domain.RetrievalContext{
		Decision:   domain.DecisionProceed,
		Confidence: domain.ConfidenceHigh,
		Chunks: []domain.RetrievedChunk{
			{DocID: "manual-1", CitationID: "kb_doc_001", Content: "reset the vpn token"},
		},
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&contextBuilderFake{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBuildContextEndpoint(t *testing.T) {
	fake := &contextBuilderFake{result: proceedResult()}
	handler := newTestRouter(fake)

	body := strings.NewReader(`{"persona_id":"persona-1","query":"vpn reset"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/context", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if fake.lastPersonaID != "persona-1" || fake.lastQuery != "vpn reset" {
		t.Fatalf("usecase saw %q / %q", fake.lastPersonaID, fake.lastQuery)
	}

	var resp domain.RetrievalContext
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Decision != domain.DecisionProceed || len(resp.Chunks) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("request id header missing")
	}
}

func TestBuildContextRejectsMissingPersona(t *testing.T) {
	handler := newTestRouter(&contextBuilderFake{result: proceedResult()})

	body := strings.NewReader(`{"query":"vpn reset"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/context", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBuildContextRejectsInvalidJSON(t *testing.T) {
	handler := newTestRouter(&contextBuilderFake{result: proceedResult()})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/context", strings.NewReader("{broken")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBuildContextRejectsGet(t *testing.T) {
	handler := newTestRouter(&contextBuilderFake{result: proceedResult()})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/context", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBuildContextMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "build context", context.DeadlineExceeded), http.StatusBadRequest},
		{"persona not found", domain.WrapError(domain.ErrPersonaNotFound, "build context", context.DeadlineExceeded), http.StatusNotFound},
		{"temporary", domain.WrapError(domain.ErrTemporary, "embed", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"unknown", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestRouter(&contextBuilderFake{err: tc.err})
			body := strings.NewReader(`{"persona_id":"p","query":"q"}`)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/context", body))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestBuildPromptEndpoint(t *testing.T) {
	handler := newTestRouter(&contextBuilderFake{result: proceedResult()})

	body := strings.NewReader(`{"persona_id":"persona-1","query":"vpn reset"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/prompt", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Prompt, "DOCUMENT REFERENCE:") || !strings.Contains(resp.Prompt, "kb_doc_001: reset the vpn token") {
		t.Fatalf("unexpected prompt:\n%s", resp.Prompt)
	}
}

func TestVerifyEndpoint(t *testing.T) {
	handler := newTestRouter(&contextBuilderFake{})

	body := strings.NewReader(`{
		"answer": "[RELEVANT] Reset the vpn token [kb_doc_001]. [GROUNDED]",
		"chunks": [{"doc_id":"manual-1","citation_id":"kb_doc_001","content":"reset the vpn token"}]
	}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/verify", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Answer         string  `json:"answer"`
		RelevanceFlag  *string `json:"relevance_flag"`
		GroundingFlag  *string `json:"grounding_flag"`
		GroundingScore float64 `json:"grounding_score"`
		CitationsFound int     `json:"citations_found"`
		CitationsTotal int     `json:"citations_total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RelevanceFlag == nil || *resp.RelevanceFlag != "RELEVANT" {
		t.Fatalf("relevance flag = %v", resp.RelevanceFlag)
	}
	if resp.GroundingFlag == nil || *resp.GroundingFlag != "GROUNDED" {
		t.Fatalf("grounding flag = %v", resp.GroundingFlag)
	}
	if strings.Contains(resp.Answer, "[RELEVANT]") || strings.Contains(resp.Answer, "[GROUNDED]") {
		t.Fatalf("markers not stripped: %q", resp.Answer)
	}
	if resp.CitationsFound != 1 || resp.CitationsTotal != 1 {
		t.Fatalf("citations = %d/%d", resp.CitationsFound, resp.CitationsTotal)
	}
}

func TestVerifyRequiresAnswer(t *testing.T) {
	handler := newTestRouter(&contextBuilderFake{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/verify", strings.NewReader(`{"answer":"  "}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
