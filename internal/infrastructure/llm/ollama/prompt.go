package ollama

import (
	"fmt"
	"strings"
)

const judgeSystemPrompt = "You are a relevance judge for a support chatbot. Respond ONLY with YES or NO."

func buildJudgeUserPrompt(query string, documents []string) string {
	return strings.TrimSpace(fmt.Sprintf(`QUERY: %s

RETRIEVED DOCUMENTS:
%s

Question: Do these documents contain sufficient information to answer the query above?
Answer:`, query, strings.Join(documents, "\n\n")))
}

func buildClassificationPrompt(text string) string {
	return fmt.Sprintf(`Classify the following support request. Respond with a JSON object:
{
  "category": "access|billing|hardware|software|other",
  "urgency": "low|medium|high",
  "requires_human": true|false,
  "needs_supervisor": true|false
}

Request:
%s`, text)
}
