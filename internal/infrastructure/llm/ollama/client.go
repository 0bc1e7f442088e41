package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
	"github.com/soporte-labs/persona-assistant/internal/infrastructure/resilience"
)

// Client talks to a single Ollama instance that serves the embedding model,
// the relevance judge model, and the ticket classification model. Requests
// share one rate limiter but get per-operation circuit breakers.
type Client struct {
	baseURL         string
	embedModel      string
	judgeModel      string
	classifierModel string
	httpClient      *http.Client
	limiter         *rate.Limiter
	executor        *resilience.Executor
}

type Options struct {
	BaseURL         string
	EmbedModel      string
	JudgeModel      string
	ClassifierModel string

	// RequestsPerSecond caps outbound calls across all models; zero
	// disables the limiter.
	RequestsPerSecond float64
	Burst             int

	Resilience resilience.Config
	Logger     *slog.Logger
}

func New(opts Options) *Client {
	classifierModel := opts.ClassifierModel
	if classifierModel == "" {
		classifierModel = opts.JudgeModel
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		embedModel:      opts.EmbedModel,
		judgeModel:      opts.JudgeModel,
		classifierModel: classifierModel,
		httpClient:      &http.Client{Timeout: 120 * time.Second},
		limiter:         limiter,
		executor:        resilience.NewExecutor(opts.Resilience, opts.Logger),
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.call(ctx, "embed", "/api/embed", request, &response); err != nil {
		return nil, err
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// Judge asks the judge model whether the retrieved documents can answer the
// query. It returns the model's raw verdict text; interpretation (including
// the fail-open policy) belongs to the caller.
type Judge struct {
	client *Client
}

func NewJudge(client *Client) *Judge {
	return &Judge{client: client}
}

func (j *Judge) JudgeRelevance(ctx context.Context, query string, documents []string) (string, error) {
	request := map[string]any{
		"model":  j.client.judgeModel,
		"stream": false,
		"options": map[string]any{
			"temperature": 0,
			"num_predict": 2,
		},
		"messages": []map[string]string{
			{"role": "system", "content": judgeSystemPrompt},
			{"role": "user", "content": buildJudgeUserPrompt(query, documents)},
		},
	}

	var response struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := j.client.call(ctx, "judge", "/api/chat", request, &response); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Message.Content), nil
}

type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

func (c *Classifier) Classify(ctx context.Context, text string) (domain.TicketClassification, error) {
	request := map[string]any{
		"model":  c.client.classifierModel,
		"prompt": buildClassificationPrompt(text),
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.client.call(ctx, "classify", "/api/generate", request, &response); err != nil {
		return domain.TicketClassification{}, err
	}

	var result domain.TicketClassification
	if err := json.Unmarshal([]byte(extractJSONObject(response.Response)), &result); err != nil {
		return domain.TicketClassification{}, fmt.Errorf("parse classification json: %w", err)
	}
	return result, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
