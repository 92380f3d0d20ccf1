package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/MikeSquared-Agency/voyager/internal/store"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// publicProfile is what non-admins see of other users.
type publicProfile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func toPublic(p store.Profile) publicProfile {
	return publicProfile{ID: p.ID, Username: p.Username, CreatedAt: p.CreatedAt}
}

func (s *Server) writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidUsername), errors.Is(err, store.ErrWeakPassword), errors.Is(err, store.ErrInvalidRole):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "profile not found")
	default:
		s.logger.Error("account request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(r.Body, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	sess, err := s.accounts.SignUp(r.Context(), c.Username, c.Password)
	if err != nil {
		s.writeAccountError(w, err)
		return
	}
	s.logger.Info("profile created", "profile_id", sess.Profile.ID, "role", sess.Profile.Role)
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(r.Body, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	sess, err := s.accounts.SignIn(r.Context(), c.Username, c.Password)
	if err != nil {
		s.writeAccountError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	token, _ := r.Context().Value(tokenKey).(string)
	if err := s.accounts.SignOut(r.Context(), token); err != nil {
		s.writeAccountError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, profileFrom(r.Context()))
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid profile id")
		return
	}
	p, err := s.accounts.GetProfile(r.Context(), id)
	if err != nil {
		s.writeAccountError(w, err)
		return
	}

	caller := profileFrom(r.Context())
	if caller.IsAdmin() || caller.ID == p.ID {
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeJSON(w, http.StatusOK, toPublic(*p))
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.accounts.ListProfiles(r.Context())
	if err != nil {
		s.writeAccountError(w, err)
		return
	}
	admins := lo.CountBy(profiles, func(p store.Profile) bool { return p.IsAdmin() })
	writeJSON(w, http.StatusOK, map[string]any{
		"profiles": profiles,
		"count":    len(profiles),
		"admins":   admins,
	})
}

func (s *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid profile id")
		return
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r.Body, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	p, err := s.accounts.UpdateRole(r.Context(), id, body.Role)
	if err != nil {
		s.writeAccountError(w, err)
		return
	}
	s.logger.Info("role updated", "profile_id", p.ID, "role", p.Role, "by", profileFrom(r.Context()).ID)
	writeJSON(w, http.StatusOK, p)
}
