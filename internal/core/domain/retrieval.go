package domain

import "time"

type Decision string

const (
	DecisionProceed  Decision = "proceed"
	DecisionEscalate Decision = "escalate"
)

type Confidence string

const (
	ConfidenceHigh Confidence = "HIGH"
	ConfidenceLow  Confidence = "LOW"
)

// ChunkMetadata carries the source attribution of a corpus chunk.
// ChunkIndex is -1 for flat knowledge chunks that are not part of an article.
type ChunkMetadata struct {
	Tags           []string   `json:"tags"`
	SourceTicketID string     `json:"source_ticket_id,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	Title          string     `json:"title,omitempty"`
	ChunkIndex     int        `json:"chunk_index"`
	Source         string     `json:"source,omitempty"`
}

// Candidate is one scoring unit derived from a corpus chunk. DocID is unique
// within a single BuildContext call only.
type Candidate struct {
	DocID     string
	Content   string
	TermFreq  map[string]int
	DocLen    int
	Embedding []float32
	Metadata  ChunkMetadata
	Source    string
}

// RetrievedChunk is a fused retrieval result. CitationID is assigned by final
// fused rank and is call-scoped; callers must not persist it.
type RetrievedChunk struct {
	DocID           string        `json:"doc_id"`
	CitationID      string        `json:"citation_id"`
	Content         string        `json:"content"`
	Source          string        `json:"source,omitempty"`
	Metadata        ChunkMetadata `json:"metadata"`
	SimilarityScore float64       `json:"similarity_score"`
	LexicalScore    float64       `json:"lexical_score"`
	FusionScore     float64       `json:"fusion_score"`
	Preview         string        `json:"preview"`
}

type RetrievalMetrics struct {
	AvgBM25Score          float64 `json:"avg_bm25_score"`
	AvgSemanticSimilarity float64 `json:"avg_semantic_similarity"`
	Top1Similarity        float64 `json:"top_1_similarity"`
	ContextPrecision      float64 `json:"context_precision"`
	ChunkCountNonZero     int     `json:"chunk_count_non_zero"`
}

type ValidationMetrics struct {
	RelevanceJudgeResult *string  `json:"relevance_judge_result"`
	SelfRAGRelevant      *string  `json:"self_rag_relevant"`
	SelfRAGGrounded      *string  `json:"self_rag_grounded"`
	GroundingScore       *float64 `json:"grounding_score"`
	CitationsFound       int      `json:"citations_found"`
	CitationsTotal       int      `json:"citations_total"`
}

type ContextMetrics struct {
	Retrieval  RetrievalMetrics  `json:"retrieval_metrics"`
	Validation ValidationMetrics `json:"validation_metrics"`
}

// RetrievalContext is the result of one BuildContext call. All fields are
// ephemeral; the pipeline owns no state across calls.
type RetrievalContext struct {
	Decision       Decision         `json:"decision"`
	Reason         string           `json:"reason,omitempty"`
	Confidence     Confidence       `json:"confidence"`
	ResponsePrefix string           `json:"response_prefix"`
	Chunks         []RetrievedChunk `json:"chunks"`
	Metrics        ContextMetrics   `json:"metrics"`
}

// SelfRAGResult is the parsed form of a generated answer carrying inline
// reflection markers. Flags are nil when the marker was absent.
type SelfRAGResult struct {
	Answer        string  `json:"answer"`
	RelevanceFlag *string `json:"relevance_flag"`
	GroundingFlag *string `json:"grounding_flag"`
}

// GroundingReport is the token-overlap estimate of answer support.
type GroundingReport struct {
	GroundingScore float64 `json:"grounding_score"`
	CitationsFound int     `json:"citations_found"`
	CitationsTotal int     `json:"citations_total"`
}
