package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/jobmatch/internal/domain/model"
	"github.com/ericfisherdev/jobmatch/internal/domain/port/driven"
)

// ValidateResult is the response to a manual API key entry.
type ValidateResult struct {
	Success bool   `json:"success"`
	Credits int    `json:"credits"`
	Email   string `json:"email"`
}

// CreditsService looks up, caches and broadcasts the remaining-credits balance.
type CreditsService struct {
	credStore  driven.CredentialStore
	cacheStore driven.CacheStore
	client     driven.ScoringClient
	bus        *EventBus
	resumes    *ResumeService
}

// NewCreditsService creates a new CreditsService with all required dependencies.
func NewCreditsService(
	credStore driven.CredentialStore,
	cacheStore driven.CacheStore,
	client driven.ScoringClient,
	bus *EventBus,
	resumes *ResumeService,
) *CreditsService {
	return &CreditsService{
		credStore:  credStore,
		cacheStore: cacheStore,
		client:     client,
		bus:        bus,
		resumes:    resumes,
	}
}

// GetCredits returns the current balance. Without a credential it returns
// {0, false} without a network call. A 401 clears the credential; any other
// remote failure falls back to the cached balance marked unauthenticated.
func (s *CreditsService) GetCredits(ctx context.Context) (model.CreditBalance, error) {
	cred, ok, err := loadCredential(ctx, s.credStore)
	if err != nil {
		return model.CreditBalance{}, err
	}
	if !ok {
		return model.CreditBalance{Credits: 0, Authenticated: false}, nil
	}

	lookup, err := s.client.FetchCredits(ctx, cred.APIKey)
	if errors.Is(err, driven.ErrUnauthorized) {
		slog.Info("credit lookup rejected, clearing credential")
		if clearErr := clearCredential(ctx, s.credStore); clearErr != nil {
			return model.CreditBalance{}, clearErr
		}
		return model.CreditBalance{Credits: 0, Authenticated: false}, nil
	}
	if err != nil {
		slog.Warn("credit lookup failed, using cached balance", "error", err)
		cached, cacheErr := loadCachedCredits(ctx, s.cacheStore)
		if cacheErr != nil {
			return model.CreditBalance{}, cacheErr
		}
		return model.CreditBalance{Credits: cached, Authenticated: false}, nil
	}

	if err := saveCachedCredits(ctx, s.cacheStore, lookup.Credits); err != nil {
		return model.CreditBalance{}, err
	}
	return model.CreditBalance{Credits: lookup.Credits, Authenticated: true}, nil
}

// UpdateCredits refreshes the balance and broadcasts creditsUpdated. It is a
// best-effort side action: failures are logged and a zero balance returned.
func (s *CreditsService) UpdateCredits(ctx context.Context) model.CreditBalance {
	balance, err := s.GetCredits(ctx)
	if err != nil {
		slog.Warn("update credits failed", "error", err)
		return model.CreditBalance{}
	}

	listeners := s.bus.Publish(Event{Type: EventCreditsUpdated, Credits: balance.Credits})
	slog.Debug("credits broadcast", "credits", balance.Credits, "listeners", listeners)
	return balance
}

// ValidateAPIKey checks a manually entered key against the credits endpoint
// and, when accepted, stores it as the credential and warms the caches.
// Stores are untouched when the key is rejected.
func (s *CreditsService) ValidateAPIKey(ctx context.Context, apiKey string) (ValidateResult, error) {
	lookup, err := s.client.FetchCredits(ctx, apiKey)
	if errors.Is(err, driven.ErrUnauthorized) {
		return ValidateResult{}, model.Wrap(model.ErrInvalidAPIKey, "Invalid API key", err)
	}
	if err != nil {
		return ValidateResult{}, model.Wrap(model.ErrValidationFailed, "", err)
	}

	cred := model.IssuedCredential{APIKey: apiKey, Email: lookup.Email}.Credential()
	if err := saveCredential(ctx, s.credStore, cred); err != nil {
		return ValidateResult{}, err
	}
	if err := saveCachedCredits(ctx, s.cacheStore, lookup.Credits); err != nil {
		return ValidateResult{}, err
	}

	s.resumes.SchedulePreCache()
	slog.Info("api key validated", "email", cred.Email, "credits", lookup.Credits)

	return ValidateResult{Success: true, Credits: lookup.Credits, Email: lookup.Email}, nil
}
