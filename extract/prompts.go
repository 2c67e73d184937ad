package extract

import (
	"fmt"
	"strings"

	"praxis"
)

// classifyInstructions ask for a relevance verdict per unit. The model
// must echo unit IDs so results can be joined back; units it drops are
// treated as not relevant.
const classifyInstructions = `You review community discussion about AI/ML services (LLM APIs, image generators, video generators, speech models).

For each <unit> in the input, decide whether the content contains experience, advice, or complaints about using a specific AI/ML service or model. Generic software talk, memes, and job postings are not relevant.

Respond with a JSON array, one object per unit:
[{"id": "<unit id>", "relevant": true|false, "subjects": ["service or model names actually mentioned"], "theme": "cost"|"prompting"|"quality"|"reliability"|"other", "relevance": 0.0-1.0}]

Only name subjects that appear in the content. Respond with JSON only.`

// extractInstructions turn one relevant unit into candidate practices.
const extractInstructions = `You extract actionable practices from community discussion about AI/ML services.

A practice is a concrete, reusable piece of advice: a prompting technique, a parameter setting, a pitfall to avoid, or a way to reduce cost. Vague sentiment ("it's great", "be careful") is not a practice.

Respond with a JSON array of practices found in the content, possibly empty:
[{"type": "prompting"|"parameter"|"pitfall"|"cost_optimization", "content": "<the advice, one or two sentences, self-contained>", "subjects": ["which of the allowed subjects it applies to"], "confidence": 0.0-1.0}]

Rules:
- type must be exactly one of the four values above
- subjects must be drawn from the allowed subjects list, never invented
- content must preserve concrete values (parameter names, numbers, prices)
- Respond with JSON only.`

// scoreInstructions judge one candidate practice for one subject.
const scoreInstructions = `You judge the quality of a practice extracted from community discussion about an AI/ML service.

Score three dimensions in [0,1]:
- relevance: is this specifically about the named subject, not AI in general?
- specificity: does it carry concrete details (settings, numbers, exact techniques) rather than generic advice?
- actionability: could a user apply it directly without further research?

Respond with JSON only: {"relevance": 0.0-1.0, "specificity": 0.0-1.0, "actionability": 0.0-1.0}`

// BuildClassifyPayload renders a batch of units for classification.
func BuildClassifyPayload(batch praxis.Batch) string {
	var sb strings.Builder
	sb.WriteString("<units>\n")
	for _, u := range batch.Units {
		sb.WriteString("<unit>\n")
		fmt.Fprintf(&sb, "<id>%s</id>\n", u.ID)
		if u.Title != "" {
			fmt.Fprintf(&sb, "<title>%s</title>\n", u.Title)
		}
		fmt.Fprintf(&sb, "<content>%s</content>\n", u.Text)
		sb.WriteString("</unit>\n")
	}
	sb.WriteString("</units>")
	return sb.String()
}

// BuildExtractPayload renders one unit plus its allowed subjects.
func BuildExtractPayload(unit praxis.RawUnit, subjects []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Allowed subjects: %s\n\n", strings.Join(subjects, ", "))
	if unit.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n\n", unit.Title)
	}
	sb.WriteString(unit.Text)
	return sb.String()
}

// BuildScorePayload renders one candidate for quality judgment.
func BuildScorePayload(candidate praxis.CandidatePractice, subject string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Subject: %s\n", subject)
	fmt.Fprintf(&sb, "Practice type: %s\n\n", candidate.Type)
	sb.WriteString(candidate.Content)
	return sb.String()
}
