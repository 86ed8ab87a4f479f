package handler

import (
	"encoding/json"
	"net/http"

	"yeardiary/internal/auth"

	"github.com/charmbracelet/log"
)

type AuthHandler struct {
	Gate *auth.Gate
	Log  *log.Logger
}

type loginReq struct {
	Credential string `json:"credential"`
}

type loginResp struct {
	Token string       `json:"token"`
	User  auth.Profile `json:"user"`
}

// Login returns a handler bound to one identity provider.
func (h *AuthHandler) Login(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		token, profile, err := h.Gate.Login(r.Context(), provider, req.Credential)
		if err != nil {
			h.Log.Warn("login failed", "provider", provider, "err", err)
			fail(w, r, h.Log, err)
			return
		}

		h.Log.Info("login", "provider", provider, "user_id", profile.ID)
		writeJSON(w, http.StatusOK, loginResp{Token: token, User: profile})
	}
}
