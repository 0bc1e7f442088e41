package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soporte-labs/persona-assistant/internal/config"
	"github.com/soporte-labs/persona-assistant/internal/core/ports"
	"github.com/soporte-labs/persona-assistant/internal/core/usecase"
	"github.com/soporte-labs/persona-assistant/internal/infrastructure/llm/ollama"
	"github.com/soporte-labs/persona-assistant/internal/infrastructure/queue/nats"
	"github.com/soporte-labs/persona-assistant/internal/infrastructure/repository/postgres"
	"github.com/soporte-labs/persona-assistant/internal/infrastructure/resilience"
	"github.com/soporte-labs/persona-assistant/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     *nats.Queue
	ContextUC ports.ContextBuilder
	RecordUC  ports.EscalationRecorder

	HTTPMetrics   *metrics.HTTPServerMetrics
	WorkerMetrics *metrics.WorkerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	corpusRepo := postgres.NewCorpusRepository(db)
	if err := corpusRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure corpus schema: %w", err)
	}
	escalationRepo := postgres.NewEscalationRepository(db)
	if err := escalationRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure escalation schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(ollama.Options{
		BaseURL:           cfg.OllamaURL,
		EmbedModel:        cfg.OllamaEmbedModel,
		JudgeModel:        cfg.OllamaJudgeModel,
		ClassifierModel:   cfg.OllamaClassifierModel,
		RequestsPerSecond: cfg.OllamaRequestsPerSec,
		Burst:             cfg.OllamaBurst,
		Resilience:        resilience.DefaultConfig(),
		Logger:            logger,
	})
	embedder := ollama.NewEmbedder(ollamaClient)
	judge := ollama.NewJudge(ollamaClient)

	var classifier ports.TicketClassifier
	if cfg.OllamaClassifierModel != "" {
		classifier = ollama.NewClassifier(ollamaClient)
	}

	tuning, err := config.LoadRetrievalTuning(cfg.RetrievalTuningPath)
	if err != nil {
		return nil, fmt.Errorf("load retrieval tuning: %w", err)
	}

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	pipelineMetrics := metrics.NewPipelineMetrics(service, httpMetrics.Registry())
	workerMetrics := metrics.NewWorkerMetrics(service)

	contextUC := usecase.NewBuildContextUseCase(
		corpusRepo,
		embedder,
		judge,
		queue,
		pipelineMetrics,
		retrievalOptions(tuning),
		logger,
	)
	recordUC := usecase.NewRecordEscalationUseCase(escalationRepo, classifier, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:     queue,
		ContextUC: contextUC,
		RecordUC:  recordUC,

		HTTPMetrics:   httpMetrics,
		WorkerMetrics: workerMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// retrievalOptions carries over only the fields the tuning file set; the
// pipeline fills the rest with its defaults.
func retrievalOptions(t config.RetrievalTuning) usecase.RetrievalOptions {
	return usecase.RetrievalOptions{
		TopK:          t.TopK,
		MaxCandidates: t.MaxCandidates,

		BM25K1: t.BM25K1,
		BM25B:  t.BM25B,

		RRFK:           t.RRFK,
		LexicalWeight:  t.LexicalWeight,
		SemanticWeight: t.SemanticWeight,

		MinAvgSimilarity:    t.MinAvgSimilarity,
		MinTopSimilarity:    t.MinTopSimilarity,
		MinContextPrecision: t.MinContextPrecision,
		HighPrecisionFloor:  t.HighPrecisionFloor,

		MaxQueryTerms:    t.MaxQueryTerms,
		PreviewChars:     t.PreviewChars,
		JudgeSnippetMax:  t.JudgeSnippetMax,
		PrecisionMatches: t.PrecisionMatches,
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
