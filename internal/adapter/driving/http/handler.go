// Package httphandler implements the JSON REST API driving adapter.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/routergate/internal/application"
	"github.com/ericfisherdev/routergate/internal/domain/model"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	accounts *application.AccountService
	settings *application.SettingsService
	gateway  *application.ProxyGateway
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	accounts *application.AccountService,
	settings *application.SettingsService,
	gateway *application.ProxyGateway,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		accounts: accounts,
		settings: settings,
		gateway:  gateway,
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request-id, logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	auth := func(next http.HandlerFunc) http.Handler {
		return authMiddleware(h.accounts, logger, next)
	}

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/request-password-reset", h.RequestPasswordReset)
	mux.HandleFunc("POST /api/auth/reset-password", h.ResetPassword)

	mux.Handle("GET /api/users", auth(h.ListUsers))
	mux.Handle("POST /api/users", auth(h.CreateUser))
	mux.Handle("PUT /api/users/{id}", auth(h.UpdateUser))
	mux.Handle("DELETE /api/users/{id}", auth(h.DeleteUser))

	mux.Handle("GET /api/config/router", auth(h.GetRouterConfig))
	mux.Handle("POST /api/config/router", auth(h.SaveRouterConfig))
	mux.Handle("GET /api/config/smtp", auth(h.GetSMTPConfig))
	mux.Handle("POST /api/config/smtp", auth(h.SaveSMTPConfig))
	mux.Handle("POST /api/config/smtp/test", auth(h.SendTestEmail))
	mux.Handle("GET /api/config/wireguard", auth(h.GetWireGuardConfig))
	mux.Handle("POST /api/config/wireguard", auth(h.SaveWireGuardConfig))

	mux.Handle("POST /api/router/proxy", auth(h.Proxy))
	mux.Handle("POST /api/router/test-connection", auth(h.TestConnection))

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// Health returns service status and the vendor tags the proxy accepts.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:           "ok",
		Time:             time.Now().UTC().Format(time.RFC3339),
		SupportedVendors: model.SupportedVendors(),
	})
}

// writeServiceError maps application and store errors onto HTTP responses.
// Anything unrecognized is logged and reported as a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, application.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, driven.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, driven.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, application.ErrTokenNotFound):
		writeError(w, http.StatusBadRequest, "invalid reset token")
	case errors.Is(err, application.ErrTokenUsed):
		writeError(w, http.StatusBadRequest, "reset token already used")
	case errors.Is(err, application.ErrTokenExpired):
		writeError(w, http.StatusBadRequest, "reset token expired")
	case errors.Is(err, application.ErrSMTPNotConfigured):
		writeError(w, http.StatusConflict, "smtp is not configured")
	default:
		h.logger.Error(op, "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
