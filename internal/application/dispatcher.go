package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/ericfisherdev/jobmatch/internal/domain/model"
)

// Command actions as sent by UI surfaces.
const (
	ActionEvaluateJob           = "evaluateJob"
	ActionGetCredits            = "getCredits"
	ActionValidateAPIKey        = "validateApiKey"
	ActionAuthenticateExtension = "authenticateExtension"
	ActionLogout                = "logout"
)

// Command is one request from a UI surface. The concrete types below are the
// only implementations.
type Command interface {
	Action() string
}

// EvaluateJobCommand carries a job posting. ContentType defaults to plain
// text; "html" asks for markup to be stripped first.
type EvaluateJobCommand struct {
	JobText     string `json:"jobText" validate:"required"`
	ContentType string `json:"contentType,omitempty" validate:"omitempty,oneof=text html"`
}

type GetCreditsCommand struct{}

type ValidateAPIKeyCommand struct {
	APIKey string `json:"apiKey" validate:"required"`
}

type AuthenticateCommand struct{}

type LogoutCommand struct{}

func (EvaluateJobCommand) Action() string    { return ActionEvaluateJob }
func (GetCreditsCommand) Action() string     { return ActionGetCredits }
func (ValidateAPIKeyCommand) Action() string { return ActionValidateAPIKey }
func (AuthenticateCommand) Action() string   { return ActionAuthenticateExtension }
func (LogoutCommand) Action() string         { return ActionLogout }

// ParseCommand decodes a {"action": ...} envelope into its Command.
// Unknown actions and malformed bodies are InvalidRequest errors.
func ParseCommand(data []byte) (Command, error) {
	var envelope struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, model.Wrap(model.ErrInvalidRequest, "", fmt.Errorf("decode command envelope: %w", err))
	}

	var cmd Command
	switch envelope.Action {
	case ActionEvaluateJob:
		var c EvaluateJobCommand
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, model.Wrap(model.ErrInvalidRequest, "", fmt.Errorf("decode %s: %w", envelope.Action, err))
		}
		cmd = c
	case ActionValidateAPIKey:
		var c ValidateAPIKeyCommand
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, model.Wrap(model.ErrInvalidRequest, "", fmt.Errorf("decode %s: %w", envelope.Action, err))
		}
		cmd = c
	case ActionGetCredits:
		cmd = GetCreditsCommand{}
	case ActionAuthenticateExtension:
		cmd = AuthenticateCommand{}
	case ActionLogout:
		cmd = LogoutCommand{}
	default:
		return nil, model.Wrap(model.ErrInvalidRequest, fmt.Sprintf("Unknown action: %q", envelope.Action), nil)
	}
	return cmd, nil
}

// Response is the result of one command: either Payload or Err is set.
type Response struct {
	Payload any
	Err     *model.Error
}

// Dispatcher routes commands to the services and converts every failure into
// a tagged error response.
type Dispatcher struct {
	evaluations *EvaluationService
	credits     *CreditsService
	auth        *AuthService
	sessions    *SessionService
	validate    *validator.Validate
}

// NewDispatcher creates a new Dispatcher with all required dependencies.
func NewDispatcher(
	evaluations *EvaluationService,
	credits *CreditsService,
	auth *AuthService,
	sessions *SessionService,
) *Dispatcher {
	return &Dispatcher{
		evaluations: evaluations,
		credits:     credits,
		auth:        auth,
		sessions:    sessions,
		validate:    validator.New(),
	}
}

// Handle runs cmd on the calling goroutine.
func (d *Dispatcher) Handle(ctx context.Context, cmd Command) Response {
	if cmd == nil {
		return failure(nil, model.Wrap(model.ErrInvalidRequest, "", nil), model.ErrInvalidRequest)
	}

	switch c := cmd.(type) {
	case EvaluateJobCommand:
		c.JobText = NormalizeJobText(c.JobText, c.ContentType)
		if err := d.validate.Struct(c); err != nil {
			return failure(cmd, model.Wrap(model.ErrInvalidRequest, "Please select text to evaluate", err), model.ErrInvalidRequest)
		}
		result, err := d.evaluations.EvaluateJob(ctx, c.JobText)
		if err != nil {
			return failure(cmd, err, model.ErrEvaluationFailed)
		}
		return Response{Payload: result}

	case GetCreditsCommand:
		balance, err := d.credits.GetCredits(ctx)
		if err != nil {
			return failure(cmd, err, model.ErrStorageFailure)
		}
		return Response{Payload: balance}

	case ValidateAPIKeyCommand:
		if err := d.validate.Struct(c); err != nil {
			return failure(cmd, model.Wrap(model.ErrInvalidRequest, "API key is required", err), model.ErrInvalidRequest)
		}
		result, err := d.credits.ValidateAPIKey(ctx, c.APIKey)
		if err != nil {
			return failure(cmd, err, model.ErrValidationFailed)
		}
		return Response{Payload: result}

	case AuthenticateCommand:
		result, err := d.auth.Authenticate(ctx)
		if err != nil {
			return failure(cmd, err, model.ErrAuthFailed)
		}
		return Response{Payload: result}

	case LogoutCommand:
		result, err := d.sessions.Logout(ctx)
		if err != nil {
			return failure(cmd, err, model.ErrStorageFailure)
		}
		return Response{Payload: result}

	default:
		return failure(cmd, model.Wrap(model.ErrInvalidRequest, fmt.Sprintf("Unknown action: %q", cmd.Action()), nil), model.ErrInvalidRequest)
	}
}

// failure converts err into an error response. Errors without a kind, such
// as a canceled context, take the command's fallback kind.
func failure(cmd Command, err error, fallback *model.Error) Response {
	var tagged *model.Error
	if !errors.As(err, &tagged) {
		tagged = model.Wrap(fallback, "", err)
	}

	action := ""
	if cmd != nil {
		action = cmd.Action()
	}
	slog.Error("command failed", "action", action, "code", string(tagged.Kind), "error", err)
	return Response{Err: tagged}
}
