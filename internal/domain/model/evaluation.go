package model

import "time"

// Recommendation is the scoring service's overall verdict on a match.
type Recommendation string

const (
	RecommendationMoveForward Recommendation = "move_forward"
	RecommendationConsider    Recommendation = "consider"
	RecommendationReject      Recommendation = "reject"
)

// jobSnippetLength is the number of runes of job text kept with the last evaluation.
const jobSnippetLength = 200

// EvaluationResult is a single résumé-versus-job score returned by the remote
// service. Results are never merged with earlier ones.
type EvaluationResult struct {
	Score                 int            `json:"score"`
	OverallRecommendation Recommendation `json:"overall_recommendation"`
	Reasons               []string       `json:"reasons"`
	Gaps                  []string       `json:"gaps"`
}

// LastEvaluation is the most recent successful evaluation as cached locally.
type LastEvaluation struct {
	Result     EvaluationResult `json:"result"`
	JobSnippet string           `json:"jobText"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewLastEvaluation builds the cache record for result, truncating jobText
// to its first 200 runes.
func NewLastEvaluation(result EvaluationResult, jobText string, at time.Time) LastEvaluation {
	return LastEvaluation{
		Result:     result,
		JobSnippet: truncateRunes(jobText, jobSnippetLength),
		Timestamp:  at,
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
