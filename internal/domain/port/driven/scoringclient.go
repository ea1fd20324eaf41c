package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/jobmatch/internal/domain/model"
)

// Sentinel errors for the distinguished remote outcomes.
var (
	// ErrUnauthorized indicates the remote service rejected the API key (HTTP 401).
	ErrUnauthorized = errors.New("scoring service: unauthorized")

	// ErrInsufficientCredits indicates the account has no credits left (HTTP 402).
	ErrInsufficientCredits = errors.New("scoring service: insufficient credits")
)

// StatusError is a non-2xx response that is neither 401 nor 402.
// Message holds the body's "error" field when the remote provided one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("scoring service: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("scoring service: status %d", e.StatusCode)
}

// ScoringClient defines the driven port for the remote résumé scoring service.
// Implementations never retry; retry policy belongs to the caller.
type ScoringClient interface {
	// FetchResume returns the résumé text stored for the account.
	FetchResume(ctx context.Context, apiKey string) (string, error)

	// Evaluate scores resumeText against jobText. Returns ErrInsufficientCredits
	// on 402 in addition to ErrUnauthorized on 401.
	Evaluate(ctx context.Context, apiKey, jobText, resumeText string) (model.EvaluationResult, error)

	// FetchCredits returns the remaining credit balance and, when known, the account email.
	FetchCredits(ctx context.Context, apiKey string) (model.CreditLookup, error)

	// AuthPageURL returns the interactive page the user completes the
	// magic-link handshake on.
	AuthPageURL(token string) string

	// CheckAuthStatus polls whether the handshake for token has completed.
	// Any error means "not yet" to the caller.
	CheckAuthStatus(ctx context.Context, token string) (model.IssuedCredential, error)
}
