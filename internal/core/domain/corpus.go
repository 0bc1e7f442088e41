package domain

import "time"

// KnowledgeChunk is the flat corpus view: a standalone, already-embedded
// knowledge snippet owned by the external ingestion pipeline.
type KnowledgeChunk struct {
	ID        string
	Content   string
	Embedding []float32
	Tags      []string
	Source    string
}

// ArticleChunk is the nested corpus view: one chunk of a published knowledge
// article, carrying the article's attribution.
type ArticleChunk struct {
	ArticleID      string
	ChunkIndex     int
	Content        string
	Embedding      []float32
	Title          string
	Tags           []string
	SourceTicketID string
	PublishedAt    *time.Time
}
