package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"

	"github.com/ericfisherdev/jobmatch/internal/domain/model"
	"github.com/ericfisherdev/jobmatch/internal/domain/port/driven"
)

// Résumé fetch budget: 3 attempts, waiting one second per attempt still remaining.
const (
	resumeAttempts    = 3
	resumeBackoffUnit = time.Second
)

// DefaultPreCacheDelay is how long after login the résumé is pre-cached.
const DefaultPreCacheDelay = time.Second

// ResumeService resolves the résumé text used for evaluations, preferring the
// local cache and falling back to the remote service.
type ResumeService struct {
	credStore  driven.CredentialStore
	cacheStore driven.CacheStore
	client     driven.ScoringClient

	preCacheDelay time.Duration
	now           func() time.Time
	timer         backoff.Timer
	schedule      func(d time.Duration, f func())
}

// NewResumeService creates a new ResumeService with all required dependencies.
func NewResumeService(
	credStore driven.CredentialStore,
	cacheStore driven.CacheStore,
	client driven.ScoringClient,
	preCacheDelay time.Duration,
) *ResumeService {
	return &ResumeService{
		credStore:     credStore,
		cacheStore:    cacheStore,
		client:        client,
		preCacheDelay: preCacheDelay,
		now:           time.Now,
		schedule:      func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Resolve returns résumé text for cred. A fresh cache entry is used as is;
// otherwise the résumé is fetched with up to three attempts and cached.
// A 401 is terminal: the credential is cleared and SessionExpired returned.
func (s *ResumeService) Resolve(ctx context.Context, cred model.Credential) (string, error) {
	cached, err := loadCachedResume(ctx, s.cacheStore)
	if err != nil {
		return "", err
	}
	now := s.now()
	if cached.IsFresh(now) {
		slog.Debug("using cached resume", "fetched", humanize.RelTime(cached.FetchedAt, now, "ago", "from now"))
		return cached.Text, nil
	}

	policy := retryPolicy{
		name:        "fetch resume",
		maxAttempts: resumeAttempts,
		delay:       linearDelay(resumeBackoffUnit),
		terminal: func(_ int, err error) bool {
			return errors.Is(err, driven.ErrUnauthorized)
		},
	}

	text, err := retry(ctx, policy, s.timer, func(ctx context.Context, _ int) (string, error) {
		return s.client.FetchResume(ctx, cred.APIKey)
	})
	switch {
	case errors.Is(err, driven.ErrUnauthorized):
		if clearErr := clearCredential(ctx, s.credStore); clearErr != nil {
			return "", clearErr
		}
		return "", model.Wrap(model.ErrSessionExpired, "", err)
	case ctx.Err() != nil:
		return "", ctx.Err()
	case err != nil:
		return "", model.Wrap(model.ErrResumeUnavailable, "", err)
	}

	if err := saveCachedResume(ctx, s.cacheStore, model.CachedResume{Text: text, FetchedAt: s.now()}); err != nil {
		return "", err
	}
	slog.Info("resume fetched and cached", "length", len(text))
	return text, nil
}

// PreCache makes a single best-effort fetch with the stored credential and
// caches the result. Failures are logged, never returned.
func (s *ResumeService) PreCache(ctx context.Context) {
	cred, ok, err := loadCredential(ctx, s.credStore)
	if err != nil {
		slog.Warn("pre-cache: load credential failed", "error", err)
		return
	}
	if !ok {
		return
	}

	text, err := s.client.FetchResume(ctx, cred.APIKey)
	if err != nil {
		slog.Warn("pre-cache: fetch resume failed", "error", err)
		return
	}
	if err := saveCachedResume(ctx, s.cacheStore, model.CachedResume{Text: text, FetchedAt: s.now()}); err != nil {
		slog.Warn("pre-cache: save resume failed", "error", err)
		return
	}
	slog.Info("resume pre-cached", "length", len(text))
}

// SchedulePreCache runs PreCache after the configured delay, detached from
// the caller's context so returning a result never waits on it.
func (s *ResumeService) SchedulePreCache() {
	s.schedule(s.preCacheDelay, func() {
		s.PreCache(context.Background())
	})
}
