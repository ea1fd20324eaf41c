package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/jobmatch/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error","code":"Internal"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes the {error, code} body for a tagged failure.
func writeError(w http.ResponseWriter, status int, err *model.Error) {
	writeJSON(w, status, ErrorResponse{Error: err.Message, Code: string(err.Kind)})
}

// codeInternal tags failures that never reached the application layer.
const codeInternal = "Internal"

// ErrorResponse is the body of every failed command.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
