package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MikeSquared-Agency/voyager/internal/planner"
)

const upstreamFailure = "The travel assistant is unavailable right now. Please try again."

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeFieldErrors(w http.ResponseWriter, fe planner.FieldErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":  "invalid request",
		"fields": fe,
	})
}

func decodeJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

// writePlanError maps a planner failure to a response. Upstream details are
// logged, never returned.
func (s *Server) writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	var fe planner.FieldErrors
	if errors.As(err, &fe) {
		writeFieldErrors(w, fe)
		return
	}
	s.logger.Error("plan request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusBadGateway, upstreamFailure)
}
