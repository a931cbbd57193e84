package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/storefront/internal/auth"
	"github.com/xenking/storefront/internal/domain/user"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    *user.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, r, http.StatusBadRequest, "all fields required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         user.RoleUser,
		Active:       true,
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			respondError(w, r, http.StatusConflict, "email already exists")
			return
		}
		respondInternal(w, r, err)
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, authResponse{
		Message: "user registered successfully",
		Token:   token,
		User:    u,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Same message as a bad password so the endpoint does not leak
			// which emails are registered.
			respondError(w, r, http.StatusBadRequest, "invalid credentials")
			return
		}
		respondInternal(w, r, err)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		respondError(w, r, http.StatusBadRequest, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, authResponse{
		Message: "login successful",
		Token:   token,
		User:    u,
	})
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	u, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "user not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"user": u})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var upd user.Update
	if req.Name != "" {
		upd.Name = &req.Name
	}
	if req.Email != "" {
		upd.Email = &req.Email
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondInternal(w, r, err)
			return
		}
		upd.PasswordHash = &hash
	}

	u, err := h.users.Update(r.Context(), claims.UserID, upd)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			respondError(w, r, http.StatusNotFound, "user not found")
		case errors.Is(err, user.ErrEmailTaken):
			respondError(w, r, http.StatusConflict, "email already exists")
		default:
			respondInternal(w, r, err)
		}
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"message": "profile updated", "user": u})
}
