package handler

import (
	"net/http"
	"time"

	"github.com/teamfit/storefront/internal/domain/auth"
	"github.com/teamfit/storefront/internal/domain/member"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type memberResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toMemberResponse(m *member.Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

// login exchanges email and password for an access/refresh token pair.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	m, err := h.members.FindByEmail(r.Context(), req.Email)
	if err != nil {
		writeUnauthorized(w)
		return
	}
	if err := auth.CheckPassword(m.PasswordHash, req.Password); err != nil {
		writeUnauthorized(w)
		return
	}

	access, err := h.tokens.IssueAccess(m.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	refresh, err := h.tokens.IssueRefresh(m.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh})
}

// refresh exchanges a valid refresh token for a new access token.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	memberID, err := h.tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	access, err := h.tokens.IssueAccess(memberID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access})
}

// me returns the authenticated member's profile.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	m, err := h.members.FindByID(r.Context(), memberID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(m))
}
