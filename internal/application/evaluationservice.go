package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ericfisherdev/jobmatch/internal/domain/model"
	"github.com/ericfisherdev/jobmatch/internal/domain/port/driven"
)

// Evaluation call budget: 2 attempts, one second apart.
const (
	evaluateAttempts = 2
	evaluateBackoff  = time.Second
)

// EvaluationService is the primary request path: it resolves a résumé, scores
// it against a job posting, and records the outcome locally.
type EvaluationService struct {
	credStore  driven.CredentialStore
	cacheStore driven.CacheStore
	client     driven.ScoringClient
	resumes    *ResumeService
	credits    *CreditsService

	now   func() time.Time
	timer backoff.Timer
}

// NewEvaluationService creates a new EvaluationService with all required dependencies.
func NewEvaluationService(
	credStore driven.CredentialStore,
	cacheStore driven.CacheStore,
	client driven.ScoringClient,
	resumes *ResumeService,
	credits *CreditsService,
) *EvaluationService {
	return &EvaluationService{
		credStore:  credStore,
		cacheStore: cacheStore,
		client:     client,
		resumes:    resumes,
		credits:    credits,
		now:        time.Now,
	}
}

// EvaluateJob scores the user's résumé against jobText.
//
// The résumé and evaluation retry budgets are independent. A 401 on the first
// evaluation attempt clears the cached résumé and the credential; a 401 on a
// later attempt is treated like any other failure. A 402 is never retried.
func (s *EvaluationService) EvaluateJob(ctx context.Context, jobText string) (model.EvaluationResult, error) {
	cred, ok, err := loadCredential(ctx, s.credStore)
	if err != nil {
		return model.EvaluationResult{}, err
	}
	if !ok {
		return model.EvaluationResult{}, model.ErrNotAuthenticated
	}

	resumeText, err := s.resumes.Resolve(ctx, cred)
	if err != nil {
		return model.EvaluationResult{}, err
	}

	policy := retryPolicy{
		name:        "evaluate",
		maxAttempts: evaluateAttempts,
		delay:       constantDelay(evaluateBackoff),
		terminal: func(attempt int, err error) bool {
			if errors.Is(err, driven.ErrInsufficientCredits) {
				return true
			}
			return attempt == 1 && errors.Is(err, driven.ErrUnauthorized)
		},
	}

	var lastAttempt int
	result, err := retry(ctx, policy, s.timer, func(ctx context.Context, attempt int) (model.EvaluationResult, error) {
		lastAttempt = attempt
		return s.client.Evaluate(ctx, cred.APIKey, jobText, resumeText)
	})
	if err != nil {
		return model.EvaluationResult{}, s.evaluationFailure(ctx, err, lastAttempt)
	}

	if err := s.recordSuccess(ctx, result, jobText); err != nil {
		return model.EvaluationResult{}, err
	}

	slog.Info("job evaluated",
		"score", result.Score,
		"recommendation", string(result.OverallRecommendation),
	)
	return result, nil
}

// evaluationFailure classifies the final error of the evaluation retry loop
// and applies the invalidation rules. attempt is the attempt that produced err.
func (s *EvaluationService) evaluationFailure(ctx context.Context, err error, attempt int) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if errors.Is(err, driven.ErrInsufficientCredits) {
		return model.Wrap(model.ErrInsufficientCredits, "", err)
	}

	if attempt == 1 && errors.Is(err, driven.ErrUnauthorized) {
		if clearErr := clearCachedResume(ctx, s.cacheStore); clearErr != nil {
			return clearErr
		}
		if clearErr := clearCredential(ctx, s.credStore); clearErr != nil {
			return clearErr
		}
		return model.Wrap(model.ErrInvalidAPIKey, "", err)
	}

	var statusErr *driven.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return model.Wrap(model.ErrEvaluationFailed, statusErr.Message, err)
	}
	return model.Wrap(model.ErrEvaluationFailed, "", err)
}

// recordSuccess caches the result, refreshes and broadcasts credits, and
// bumps the daily counter.
func (s *EvaluationService) recordSuccess(ctx context.Context, result model.EvaluationResult, jobText string) error {
	now := s.now()

	if err := saveLastEvaluation(ctx, s.cacheStore, model.NewLastEvaluation(result, jobText, now)); err != nil {
		return err
	}

	s.credits.UpdateCredits(ctx)

	stats, err := loadStats(ctx, s.cacheStore)
	if err != nil {
		return err
	}
	return saveStats(ctx, s.cacheStore, stats.Record(now))
}
