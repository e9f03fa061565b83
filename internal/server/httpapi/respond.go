package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// response is the uniform envelope for every boundary reply.
type response struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  []common.FieldError `json:"errors,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	s.writeJSON(w, status, response{Success: true, Message: message, Data: data})
}

// writeError maps domain errors onto HTTP statuses. Internal errors are
// logged and surfaced as a generic failure without detail.
func (s *Server) writeError(r *http.Request, w http.ResponseWriter, err error) {
	if ve, ok := common.AsValidation(err); ok {
		s.writeJSON(w, http.StatusBadRequest, response{
			Success: false,
			Message: "Validation failed",
			Errors:  ve.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, common.ErrInvalidOrExpiredResetToken):
		s.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "Invalid or expired reset token"})
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrRefreshTokenExpired):
		s.writeJSON(w, http.StatusUnauthorized, response{Success: false, Message: "Unauthorized"})
	case errors.Is(err, common.ErrorNotFound):
		s.writeJSON(w, http.StatusNotFound, response{Success: false, Message: "Not found"})
	case errors.Is(err, common.ErrorConflict):
		s.writeJSON(w, http.StatusConflict, response{Success: false, Message: "Email is already taken"})
	default:
		s.logger.Error(r.Context(), "internal error", "path", r.URL.Path, "error", err.Error())
		s.writeJSON(w, http.StatusInternalServerError, response{Success: false, Message: "Internal server error"})
	}
}

// decodeBody parses the JSON request body into dst, reporting malformed
// payloads as a ValidationError so they go through the same envelope.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.NewValidationError(common.FieldError{Field: "body", Message: "must be valid JSON"})
	}
	return nil
}
