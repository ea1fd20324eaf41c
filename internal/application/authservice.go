package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/jobmatch/internal/domain/model"
	"github.com/ericfisherdev/jobmatch/internal/domain/port/driven"
)

// Magic-link polling defaults: every 2 seconds for at most 2 minutes.
const (
	DefaultAuthPollInterval = 2 * time.Second
	DefaultAuthMaxPolls     = 60
)

// AuthResult is the response to a completed magic-link handshake.
type AuthResult struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
	Credits int    `json:"credits"`
}

// AuthService drives the magic-link handshake: it opens the remote
// authorization page, polls until the remote issues a key, then stores the
// credential and warms the caches.
//
// A poll in flight is not aborted when the requesting surface goes away;
// only success, the attempt ceiling, or process shutdown end it.
type AuthService struct {
	credStore  driven.CredentialStore
	cacheStore driven.CacheStore
	client     driven.ScoringClient
	opener     driven.PageOpener
	credits    *CreditsService
	resumes    *ResumeService
	bus        *EventBus

	pollInterval time.Duration
	maxPolls     int
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error
	newToken     func() string
}

// NewAuthService creates a new AuthService with all required dependencies.
func NewAuthService(
	credStore driven.CredentialStore,
	cacheStore driven.CacheStore,
	client driven.ScoringClient,
	opener driven.PageOpener,
	credits *CreditsService,
	resumes *ResumeService,
	bus *EventBus,
	pollInterval time.Duration,
	maxPolls int,
) *AuthService {
	return &AuthService{
		credStore:    credStore,
		cacheStore:   cacheStore,
		client:       client,
		opener:       opener,
		credits:      credits,
		resumes:      resumes,
		bus:          bus,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
		now:          time.Now,
		sleep:        sleepContext,
		newToken:     newSessionToken,
	}
}

// authFlow is the per-call state of one handshake.
type authFlow struct {
	state   model.AuthState
	session model.AuthSession
	page    string
	polls   int
}

func (f *authFlow) transition(to model.AuthState) {
	slog.Debug("auth state change", "from", string(f.state), "to", string(to), "polls", f.polls)
	f.state = to
}

// Authenticate runs the handshake to completion. Exhausting the polling
// budget returns AuthTimeout; other unexpected failures return AuthFailed so
// the caller can roll back its UI.
func (s *AuthService) Authenticate(ctx context.Context) (AuthResult, error) {
	flow := &authFlow{state: model.AuthStateIdle}

	result, err := s.run(ctx, flow)
	if err != nil {
		if flow.state != model.AuthStateTimedOut {
			flow.transition(model.AuthStateFailed)
		}
		s.abandon(flow)
		slog.Error("authentication failed", "state", string(flow.state), "polls", flow.polls, "error", err)
		return AuthResult{}, err
	}
	return result, nil
}

func (s *AuthService) run(ctx context.Context, flow *authFlow) (AuthResult, error) {
	flow.session = model.AuthSession{Token: s.newToken(), CreatedAt: s.now()}
	if err := s.cacheStore.Set(ctx, map[string]string{keyAuthToken: flow.session.Token}); err != nil {
		return AuthResult{}, storageErr("save auth token", err)
	}
	flow.transition(model.AuthStateSessionStarted)

	page, err := s.opener.Open(ctx, s.client.AuthPageURL(flow.session.Token))
	if err != nil {
		return AuthResult{}, model.Wrap(model.ErrAuthFailed, "", err)
	}
	flow.page = page
	flow.transition(model.AuthStatePolling)

	for flow.polls < s.maxPolls {
		if err := s.sleep(ctx, s.pollInterval); err != nil {
			return AuthResult{}, model.Wrap(model.ErrAuthFailed, "", err)
		}
		flow.polls++

		issued, err := s.client.CheckAuthStatus(ctx, flow.session.Token)
		if err != nil {
			slog.Debug("auth not complete yet", "poll", flow.polls, "error", err)
			continue
		}
		return s.complete(ctx, flow, issued)
	}

	flow.transition(model.AuthStateTimedOut)
	return AuthResult{}, model.ErrAuthTimeout
}

// complete persists the issued credential and performs the post-login
// side actions. Only storage failures fail the flow; the credit refresh and
// page close are best-effort.
func (s *AuthService) complete(ctx context.Context, flow *authFlow, issued model.IssuedCredential) (AuthResult, error) {
	if err := saveCredential(ctx, s.credStore, issued.Credential()); err != nil {
		return AuthResult{}, err
	}
	if err := s.cacheStore.Remove(ctx, keyAuthToken); err != nil {
		return AuthResult{}, storageErr("remove auth token", err)
	}
	flow.transition(model.AuthStateSucceeded)

	if err := s.opener.Close(ctx, flow.page); err != nil {
		slog.Debug("closing auth page failed", "error", err)
	}

	balance := s.credits.UpdateCredits(ctx)
	s.bus.Publish(Event{Type: EventAuthenticationComplete, Credits: balance.Credits, Email: issued.Email})
	s.resumes.SchedulePreCache()

	slog.Info("authentication complete", "email", issued.Credential().Email, "polls", flow.polls)
	return AuthResult{Success: true, Email: issued.Email, Credits: balance.Credits}, nil
}

// abandon removes the transient session token of a flow that did not succeed.
func (s *AuthService) abandon(flow *authFlow) {
	if flow.session.Token == "" {
		return
	}
	if err := s.cacheStore.Remove(context.Background(), keyAuthToken); err != nil {
		slog.Warn("removing abandoned auth token failed", "error", err)
	}
}

// newSessionToken joins a random component with a base-36 clock component.
// The token is single-use and short-lived, so it only needs to avoid collisions.
func newSessionToken() string {
	return fmt.Sprintf("%s%s", uuid.NewString(), strconv.FormatInt(time.Now().UnixNano(), 36))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
