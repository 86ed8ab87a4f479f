package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"yeardiary/internal/auth"

	"github.com/charmbracelet/log"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps a domain error to a status. Anything unrecognized is logged and
// answered with a generic 500.
func fail(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, auth.ErrMissingCredential):
		writeError(w, http.StatusBadRequest, "credential required")
	case errors.Is(err, auth.ErrInvalidCredential):
		writeError(w, http.StatusBadRequest, "authentication failed")
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "login required")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, "invalid token")
	case errors.Is(err, auth.ErrConfiguration):
		logger.Error("identity provider misconfigured", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "login is not configured")
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"err", err,
		)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}

// identity is set by auth.RequireAuth on every protected route.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}
