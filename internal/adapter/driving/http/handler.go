package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/jobmatch/internal/application"
	"github.com/ericfisherdev/jobmatch/internal/domain/model"
)

// maxCommandBytes bounds a command body. Job postings are the largest payload.
const maxCommandBytes = 1 << 20

// defaultKeepAlive is the interval between SSE comment frames on an idle stream.
const defaultKeepAlive = 25 * time.Second

// CommandDispatcher executes one command and returns its tagged response.
type CommandDispatcher interface {
	Handle(ctx context.Context, cmd application.Command) application.Response
}

// Handler is the HTTP driving adapter that exposes the command surface.
type Handler struct {
	dispatcher CommandDispatcher
	bus        *application.EventBus
	logger     *slog.Logger
	keepAlive  time.Duration
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(dispatcher CommandDispatcher, bus *application.EventBus, logger *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		bus:        bus,
		logger:     logger,
		keepAlive:  defaultKeepAlive,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/commands", h.Command)
	mux.HandleFunc("GET /api/v1/events", h.Events)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Command decodes an {"action": ...} body and runs it through the dispatcher.
// Failures are answered with {error, code}.
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, model.Wrap(model.ErrInvalidRequest, "Request body too large.", err))
			return
		}
		writeError(w, http.StatusBadRequest, model.Wrap(model.ErrInvalidRequest, "", err))
		return
	}

	cmd, err := application.ParseCommand(body)
	if err != nil {
		var tagged *model.Error
		if !errors.As(err, &tagged) {
			tagged = model.Wrap(model.ErrInvalidRequest, "", err)
		}
		writeError(w, http.StatusBadRequest, tagged)
		return
	}

	resp := h.dispatcher.Handle(r.Context(), cmd)
	if resp.Err != nil {
		writeError(w, statusForKind(resp.Err.Kind), resp.Err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Payload)
}

// Events streams creditsUpdated and authenticationComplete broadcasts as
// server-sent events until the client disconnects.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	// Subscribed before the headers go out, so a client that has seen the
	// response misses no event.
	events, unsubscribe := h.bus.Subscribe(16)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Error("event stream not flushable", "error", err)
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, e); err != nil {
				h.logger.Debug("event stream write failed", "error", err)
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// Health reports liveness for the container probe.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusForKind maps an error kind onto the closest HTTP status.
func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindInvalidRequest:
		return http.StatusBadRequest
	case model.KindNotAuthenticated, model.KindSessionExpired, model.KindInvalidAPIKey:
		return http.StatusUnauthorized
	case model.KindInsufficientCredits:
		return http.StatusPaymentRequired
	case model.KindAuthTimeout:
		return http.StatusGatewayTimeout
	case model.KindResumeUnavailable, model.KindEvaluationFailed, model.KindValidationFailed, model.KindAuthFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeEvent(w io.Writer, e application.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
	return err
}
