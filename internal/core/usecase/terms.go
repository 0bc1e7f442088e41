package usecase

import (
	"strings"
	"unicode"
)

// commonStopwords is tuned for support-ticket phrasing: besides generic
// English filler it drops the words every ticket contains anyway.
var commonStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "from": {},
	"this": {}, "have": {}, "when": {}, "your": {}, "into": {}, "onto": {},
	"about": {}, "issue": {}, "ticket": {}, "agent": {}, "user": {},
	"customer": {}, "client": {}, "please": {}, "need": {}, "needs": {},
	"error": {}, "cant": {}, "cannot": {}, "unable": {}, "case": {},
	"problem": {}, "help": {},
}

const (
	minQueryTermLength   = 3
	defaultMaxQueryTerms = 6
)

// extractQueryTerms picks the distinctive keywords of a query: lower-cased
// alphanumeric tokens, stopwords and short tokens removed, de-duplicated in
// order of first appearance, capped at limit.
func extractQueryTerms(text string, limit int) []string {
	if limit <= 0 {
		limit = defaultMaxQueryTerms
	}
	tokens := splitAlphaNumLower(text)
	terms := make([]string, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, token := range tokens {
		if len(token) < minQueryTermLength {
			continue
		}
		if _, stop := commonStopwords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		terms = append(terms, token)
		if len(terms) >= limit {
			break
		}
	}
	return terms
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitAlphaNumLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func termFrequencies(tokens []string) map[string]int {
	out := make(map[string]int, len(tokens))
	for _, token := range tokens {
		out[token]++
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max])
}
