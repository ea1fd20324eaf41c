package model

import "errors"

// ErrorKind tags a terminal failure surfaced to command callers.
type ErrorKind string

const (
	KindNotAuthenticated    ErrorKind = "NotAuthenticated"
	KindSessionExpired      ErrorKind = "SessionExpired"
	KindInvalidAPIKey       ErrorKind = "InvalidApiKey"
	KindInsufficientCredits ErrorKind = "InsufficientCredits"
	KindResumeUnavailable   ErrorKind = "ResumeUnavailable"
	KindEvaluationFailed    ErrorKind = "EvaluationFailed"
	KindAuthTimeout         ErrorKind = "AuthTimeout"
	KindAuthFailed          ErrorKind = "AuthFailed"
	KindValidationFailed    ErrorKind = "ValidationFailed"
	KindStorageFailure      ErrorKind = "StorageFailure"
	KindInvalidRequest      ErrorKind = "InvalidRequest"
)

// Error is a tagged, user-presentable failure. Message is safe to show in a
// UI; Err carries the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so callers can compare against the
// sentinels below with errors.Is regardless of message or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels carrying the default user-facing message for each kind.
var (
	ErrNotAuthenticated    = &Error{Kind: KindNotAuthenticated, Message: "Please connect your account in the extension popup"}
	ErrSessionExpired      = &Error{Kind: KindSessionExpired, Message: "Session expired. Please reconnect your account."}
	ErrInvalidAPIKey       = &Error{Kind: KindInvalidAPIKey, Message: "Invalid API key. Please reconnect your account."}
	ErrInsufficientCredits = &Error{Kind: KindInsufficientCredits, Message: "No credits remaining. Please purchase more credits."}
	ErrResumeUnavailable   = &Error{Kind: KindResumeUnavailable, Message: "Unable to fetch your resume. Please ensure it is uploaded on the website."}
	ErrEvaluationFailed    = &Error{Kind: KindEvaluationFailed, Message: "Evaluation failed. Please try again."}
	ErrAuthTimeout         = &Error{Kind: KindAuthTimeout, Message: "Authentication timeout. Please try again."}
	ErrAuthFailed          = &Error{Kind: KindAuthFailed, Message: "Authentication failed. Please try again."}
	ErrValidationFailed    = &Error{Kind: KindValidationFailed, Message: "Failed to validate API key"}
	ErrStorageFailure      = &Error{Kind: KindStorageFailure, Message: "Local storage is unavailable."}
	ErrInvalidRequest      = &Error{Kind: KindInvalidRequest, Message: "Invalid request."}
)

// Wrap returns a copy of sentinel carrying cause. When message is non-empty
// it replaces the sentinel's default text.
func Wrap(sentinel *Error, message string, cause error) *Error {
	e := &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: cause}
	if message != "" {
		e.Message = message
	}
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
