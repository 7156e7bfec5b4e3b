package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ProofINer/proofin-backend/internal/domain"
)

// envelope is the uniform response shape: success plus either data or a
// message. count rides along on list responses.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, envelope{Success: true, Data: data})
}

func writeList(w http.ResponseWriter, status int, data any, count int) {
	writeEnvelope(w, status, envelope{Success: true, Data: data, Count: &count})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, envelope{Success: true, Message: message})
}

// writeError maps domain errors to status codes. Unrecognized errors
// become opaque 500s; their detail stays in the logs.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := domain.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("internal error", slog.String("error", err.Error()))
		message = "internal server error"
	}
	writeEnvelope(w, status, envelope{Success: false, Message: message})
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, envelope{Success: false, Message: message})
}

func writeEnvelope(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
