package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/jobmatch/internal/domain/port/driven"
)

// LogoutResult is the response to a logout command.
type LogoutResult struct {
	Success bool `json:"success"`
}

// SessionService ends the local session.
type SessionService struct {
	credStore  driven.CredentialStore
	cacheStore driven.CacheStore
	bus        *EventBus
}

// NewSessionService creates a new SessionService with all required dependencies.
func NewSessionService(credStore driven.CredentialStore, cacheStore driven.CacheStore, bus *EventBus) *SessionService {
	return &SessionService{credStore: credStore, cacheStore: cacheStore, bus: bus}
}

// Logout wipes both storage tiers and tells listeners the balance is gone.
// A later GetCredits returns {0, false} without touching the network.
func (s *SessionService) Logout(ctx context.Context) (LogoutResult, error) {
	if err := s.credStore.Clear(ctx); err != nil {
		return LogoutResult{}, storageErr("clear credential store", err)
	}
	if err := s.cacheStore.Clear(ctx); err != nil {
		return LogoutResult{}, storageErr("clear cache store", err)
	}

	s.bus.Publish(Event{Type: EventCreditsUpdated, Credits: 0})
	slog.Info("logged out")
	return LogoutResult{Success: true}, nil
}
