package handler

import (
	"net/http"
)

type MeHandler struct{}

type meResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Me echoes the identity carried by the bearer token.
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	writeJSON(w, http.StatusOK, meResponse{ID: id.UserID, Email: id.Email})
}
