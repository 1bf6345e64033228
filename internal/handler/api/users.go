// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/foliolab/folio/internal/auth"
	"github.com/foliolab/folio/internal/model"
	"github.com/foliolab/folio/internal/store"
)

const minPasswordLength = 8

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest is the request body for a partial user update.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// SetupRequest is the request body for the one-time setup endpoint.
type SetupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func validateUserInput(email, password, role string) (string, bool) {
	if _, err := mail.ParseAddress(email); err != nil {
		return "invalid email address", false
	}
	if len(password) < minPasswordLength {
		return "password must be at least 8 characters", false
	}
	if role != "" && !model.ValidRole(role) {
		return "role must be owner, admin or editor", false
	}
	return "", true
}

func userIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// ListUsers handles GET /users. Password hashes never leave the store
// layer serialized; the model hides them from JSON.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "users")
		return
	}
	writeData(w, http.StatusOK, users)
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if msg, ok := validateUserInput(req.Email, req.Password, req.Role); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleEditor
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.handleStoreError(w, err, "user")
		return
	}

	user, err := h.store.CreateUser(r.Context(), store.CreateUserParams{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		h.handleStoreError(w, err, "user")
		return
	}

	h.log.Info("user created", "user_id", user.ID, "role", user.Role)
	writeData(w, http.StatusCreated, user)
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.handleStoreError(w, err, "user")
		return
	}
	writeData(w, http.StatusOK, user)
}

// UpdateUser handles PATCH /users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			writeError(w, http.StatusBadRequest, "invalid email address")
			return
		}
	}
	if req.Role != nil && !model.ValidRole(*req.Role) {
		writeError(w, http.StatusBadRequest, "role must be owner, admin or editor")
		return
	}

	var hashPtr *string
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.handleStoreError(w, err, "user")
			return
		}
		hashPtr = &hash
	}

	user, err := h.store.UpdateUser(r.Context(), id, store.UpdateUserParams{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hashPtr,
		Role:         req.Role,
	})
	if err != nil {
		h.handleStoreError(w, err, "user")
		return
	}
	writeData(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		h.handleStoreError(w, err, "user")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"deleted": true})
}

// SetupStatus handles GET /setup: reports whether first-run setup is
// still available.
func (h *Handler) SetupStatus(w http.ResponseWriter, r *http.Request) {
	hasUsers, err := h.store.HasUsers(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "setup")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"needs_setup": !hasUsers})
}

// Setup handles POST /setup: creates the first owner account. Once any
// user exists the endpoint is permanently closed.
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	hasUsers, err := h.store.HasUsers(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "setup")
		return
	}
	if hasUsers {
		h.handleStoreError(w, store.ErrSetupComplete, "setup")
		return
	}

	var req SetupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if msg, ok := validateUserInput(req.Email, req.Password, model.RoleOwner); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.handleStoreError(w, err, "setup")
		return
	}

	user, err := h.store.CreateUser(r.Context(), store.CreateUserParams{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         model.RoleOwner,
	})
	if err != nil {
		h.handleStoreError(w, err, "setup")
		return
	}

	h.log.Info("setup completed", "user_id", user.ID)
	writeData(w, http.StatusCreated, user)
}
