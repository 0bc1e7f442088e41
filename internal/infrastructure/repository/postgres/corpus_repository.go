package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

// CorpusRepository reads the persona-scoped knowledge corpus. The corpus is
// written by the external ingestion and distillation pipelines; this service
// only selects from it, so every query re-reads current rows with no caching.
type CorpusRepository struct {
	db *sql.DB
}

func NewCorpusRepository(db *sql.DB) *CorpusRepository {
	return &CorpusRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *CorpusRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS persona_chunks (
	id TEXT PRIMARY KEY,
	persona_id TEXT NOT NULL,
	content TEXT NOT NULL,
	embedding vector,
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	source TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS persona_articles (
	id TEXT PRIMARY KEY,
	persona_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	source_ticket_id TEXT,
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	published_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS persona_article_chunks (
	article_id TEXT NOT NULL REFERENCES persona_articles(id) ON DELETE CASCADE,
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	embedding vector,
	PRIMARY KEY (article_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_persona_chunks_persona ON persona_chunks(persona_id);
CREATE INDEX IF NOT EXISTS idx_persona_articles_persona ON persona_articles(persona_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *CorpusRepository) ListKnowledgeChunks(ctx context.Context, personaID string, limit int) ([]domain.KnowledgeChunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, content, embedding, tags, COALESCE(source, '')
FROM persona_chunks
WHERE persona_id = $1
ORDER BY id
LIMIT $2
`, personaID, limit)
	if err != nil {
		return nil, fmt.Errorf("query persona chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.KnowledgeChunk
	for rows.Next() {
		var chunk domain.KnowledgeChunk
		var embedding sql.Null[pgvector.Vector]
		var tagsRaw []byte

		if err := rows.Scan(&chunk.ID, &chunk.Content, &embedding, &tagsRaw, &chunk.Source); err != nil {
			return nil, fmt.Errorf("scan persona chunk: %w", err)
		}
		if embedding.Valid {
			chunk.Embedding = embedding.V.Slice()
		}
		if err := json.Unmarshal(tagsRaw, &chunk.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal chunk tags: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persona chunks: %w", err)
	}
	return chunks, nil
}

func (r *CorpusRepository) ListArticleChunks(ctx context.Context, personaID string, limit int) ([]domain.ArticleChunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.article_id, c.chunk_index, c.content, c.embedding, a.title, a.tags, COALESCE(a.source_ticket_id, ''), a.published_at
FROM persona_article_chunks c
JOIN persona_articles a ON a.id = c.article_id
WHERE a.persona_id = $1
ORDER BY c.article_id, c.chunk_index
LIMIT $2
`, personaID, limit)
	if err != nil {
		return nil, fmt.Errorf("query article chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.ArticleChunk
	for rows.Next() {
		var chunk domain.ArticleChunk
		var embedding sql.Null[pgvector.Vector]
		var tagsRaw []byte
		var publishedAt sql.NullTime

		if err := rows.Scan(&chunk.ArticleID, &chunk.ChunkIndex, &chunk.Content, &embedding, &chunk.Title, &tagsRaw, &chunk.SourceTicketID, &publishedAt); err != nil {
			return nil, fmt.Errorf("scan article chunk: %w", err)
		}
		if embedding.Valid {
			chunk.Embedding = embedding.V.Slice()
		}
		if err := json.Unmarshal(tagsRaw, &chunk.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal article tags: %w", err)
		}
		if publishedAt.Valid {
			t := publishedAt.Time
			chunk.PublishedAt = &t
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate article chunks: %w", err)
	}
	return chunks, nil
}
