package httphandler

import (
	"net/http"
	"time"
)

// Login verifies credentials and returns a bearer session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, "failed to log in", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserResponse(sess.User),
	})
}

// RequestPasswordReset mails a reset link when the email is known. The
// response is identical whether or not it is.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.accounts.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.writeServiceError(w, r, "failed to request password reset", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "if the address belongs to an active account, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token and sets the new password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.accounts.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeServiceError(w, r, "failed to reset password", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}
