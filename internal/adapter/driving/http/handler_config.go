package httphandler

import (
	"net/http"

	"github.com/ericfisherdev/routergate/internal/domain/model"
)

// GetRouterConfig returns the stored router profile, or null when none is saved.
func (h *Handler) GetRouterConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.RouterConfig(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "failed to get router config", err)
		return
	}
	if cfg == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	writeJSON(w, http.StatusOK, toRouterConfigResponse(*cfg))
}

// SaveRouterConfig replaces the stored router profile.
func (h *Handler) SaveRouterConfig(w http.ResponseWriter, r *http.Request) {
	var req RouterConfigRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := req.profile()
	cfg := model.RouterConfig{
		Vendor:   model.VendorTag(req.vendor()),
		Host:     p.Host,
		Port:     p.Port,
		Username: p.Username,
		Secret:   p.Secret,
		UseHTTPS: p.UseHTTPS,
	}
	if err := h.settings.SaveRouterConfig(r.Context(), cfg); err != nil {
		h.writeServiceError(w, r, "failed to save router config", err)
		return
	}

	h.GetRouterConfig(w, r)
}

// GetSMTPConfig returns the stored SMTP relay, or null when none is saved.
func (h *Handler) GetSMTPConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.SMTPConfig(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "failed to get smtp config", err)
		return
	}
	if cfg == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	writeJSON(w, http.StatusOK, toSMTPConfigResponse(*cfg))
}

// SaveSMTPConfig replaces the stored SMTP relay.
func (h *Handler) SaveSMTPConfig(w http.ResponseWriter, r *http.Request) {
	var req SMTPConfigRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := model.SMTPConfig{
		Host:      req.Host,
		Port:      int(req.Port),
		Username:  req.Username,
		Password:  req.Password,
		UseTLS:    req.UseTLS,
		UseSSL:    req.UseSSL,
		FromEmail: req.FromEmail,
	}
	if err := h.settings.SaveSMTPConfig(r.Context(), cfg); err != nil {
		h.writeServiceError(w, r, "failed to save smtp config", err)
		return
	}

	h.GetSMTPConfig(w, r)
}

// SendTestEmail sends a test message through the stored relay.
func (h *Handler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	var req TestEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settings.SendTestEmail(r.Context(), req.ToEmail); err != nil {
		h.writeServiceError(w, r, "failed to send test email", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "test email sent"})
}

// GetWireGuardConfig returns the stored WireGuard defaults, or null.
func (h *Handler) GetWireGuardConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.WireGuardConfig(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "failed to get wireguard config", err)
		return
	}
	if cfg == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	writeJSON(w, http.StatusOK, toWireGuardConfigResponse(*cfg))
}

// SaveWireGuardConfig replaces the stored WireGuard defaults.
func (h *Handler) SaveWireGuardConfig(w http.ResponseWriter, r *http.Request) {
	var req WireGuardConfigRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := model.WireGuardConfig{
		DefaultEndpoint: req.DefaultEndpoint,
		DefaultPort:     int(req.DefaultPort),
		AllowedIPRange:  req.AllowedIPRange,
		ClientDNS:       req.ClientDNS,
	}
	if err := h.settings.SaveWireGuardConfig(r.Context(), cfg); err != nil {
		h.writeServiceError(w, r, "failed to save wireguard config", err)
		return
	}

	h.GetWireGuardConfig(w, r)
}
