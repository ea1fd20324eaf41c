package model

import "time"

// AuthSession correlates one magic-link handshake with its polling loop.
// It lives only in the local cache and is removed when the flow ends.
type AuthSession struct {
	Token     string
	CreatedAt time.Time
}

// AuthState is a step of the magic-link handshake.
type AuthState string

const (
	AuthStateIdle           AuthState = "idle"
	AuthStateSessionStarted AuthState = "session_started"
	AuthStatePolling        AuthState = "polling"
	AuthStateSucceeded      AuthState = "succeeded"
	AuthStateTimedOut       AuthState = "timed_out"
	AuthStateFailed         AuthState = "failed"
)
