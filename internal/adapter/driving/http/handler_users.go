package httphandler

import (
	"net/http"
	"strconv"

	"github.com/ericfisherdev/routergate/internal/domain/model"
)

// ListUsers returns all operator accounts.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "failed to list users", err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateUser adds an operator account.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	user, err := h.accounts.CreateUser(r.Context(), req.Name, req.Email, req.Password, enabled)
	if err != nil {
		h.writeServiceError(w, r, "failed to create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// UpdateUser applies a partial update to an account.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if self := currentUser(r.Context()); self != nil && self.ID == id && req.Enabled != nil && !*req.Enabled {
		writeError(w, http.StatusBadRequest, "cannot disable your own account")
		return
	}

	upd := model.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Enabled:  req.Enabled,
	}
	if err := h.accounts.UpdateUser(r.Context(), id, upd); err != nil {
		h.writeServiceError(w, r, "failed to update user", err)
		return
	}

	user, err := h.accounts.GetUser(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "failed to load updated user", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

// DeleteUser removes an account. Operators cannot delete themselves.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if self := currentUser(r.Context()); self != nil && self.ID == id {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := h.accounts.DeleteUser(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "failed to delete user", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
