package usecase

// RetrievalOptions are the tunables of the hybrid pipeline. The thresholds
// and weights have no offline-evaluation pedigree yet, so all of them are
// configuration rather than constants.
type RetrievalOptions struct {
	TopK          int
	MaxCandidates int

	BM25K1 float64
	BM25B  float64

	RRFK           int
	LexicalWeight  float64
	SemanticWeight float64

	MinAvgSimilarity    float64
	MinTopSimilarity    float64
	MinContextPrecision float64
	HighPrecisionFloor  float64

	MaxQueryTerms    int
	PreviewChars     int
	JudgeSnippetMax  int
	PrecisionMatches int
}

func DefaultRetrievalOptions() RetrievalOptions {
	return RetrievalOptions{
		TopK:          5,
		MaxCandidates: 400,

		BM25K1: 1.9,
		BM25B:  0.75,

		// Semantic similarity is weighted above lexical overlap: ticket
		// phrasing varies too much for term matching to dominate.
		RRFK:           60,
		LexicalWeight:  0.40,
		SemanticWeight: 0.60,

		MinAvgSimilarity:    0.40,
		MinTopSimilarity:    0.45,
		MinContextPrecision: 0.40,
		HighPrecisionFloor:  0.60,

		MaxQueryTerms:    defaultMaxQueryTerms,
		PreviewChars:     480,
		JudgeSnippetMax:  1500,
		PrecisionMatches: 3,
	}
}

func (o RetrievalOptions) normalize() RetrievalOptions {
	out := o
	def := DefaultRetrievalOptions()

	if out.TopK <= 0 {
		out.TopK = def.TopK
	}
	if out.MaxCandidates <= 0 {
		out.MaxCandidates = def.MaxCandidates
	}
	if out.BM25K1 <= 0 {
		out.BM25K1 = def.BM25K1
	}
	if out.BM25B <= 0 || out.BM25B > 1 {
		out.BM25B = def.BM25B
	}
	if out.RRFK <= 0 {
		out.RRFK = def.RRFK
	}
	if out.LexicalWeight <= 0 {
		out.LexicalWeight = def.LexicalWeight
	}
	if out.SemanticWeight <= 0 {
		out.SemanticWeight = def.SemanticWeight
	}
	if out.MinAvgSimilarity <= 0 {
		out.MinAvgSimilarity = def.MinAvgSimilarity
	}
	if out.MinTopSimilarity <= 0 {
		out.MinTopSimilarity = def.MinTopSimilarity
	}
	if out.MinContextPrecision <= 0 {
		out.MinContextPrecision = def.MinContextPrecision
	}
	if out.HighPrecisionFloor <= 0 || out.HighPrecisionFloor < out.MinContextPrecision {
		out.HighPrecisionFloor = def.HighPrecisionFloor
	}
	if out.MaxQueryTerms <= 0 {
		out.MaxQueryTerms = def.MaxQueryTerms
	}
	if out.PreviewChars <= 0 {
		out.PreviewChars = def.PreviewChars
	}
	if out.JudgeSnippetMax <= 0 {
		out.JudgeSnippetMax = def.JudgeSnippetMax
	}
	if out.PrecisionMatches <= 0 {
		out.PrecisionMatches = def.PrecisionMatches
	}
	return out
}
