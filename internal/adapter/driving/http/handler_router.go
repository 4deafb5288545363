package httphandler

import (
	"net/http"

	"github.com/ericfisherdev/routergate/internal/domain/model"
)

// Proxy forwards a single call to the appliance described in the body.
func (h *Handler) Proxy(w http.ResponseWriter, r *http.Request) {
	var req ProxyRequestBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, ok := h.resolveProfile(w, r, req.ConnectionRequest)
	if !ok {
		return
	}

	res := h.gateway.Proxy(r.Context(), req.vendor(), profile, model.ProxyRequest{
		Path:   req.Path,
		Method: req.Method,
		Body:   req.Body,
	})
	writeJSON(w, ProxyStatus(res), res)
}

// TestConnection probes the appliance's read-only status endpoint.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, ok := h.resolveProfile(w, r, req)
	if !ok {
		return
	}

	res := h.gateway.TestConnection(r.Context(), req.vendor(), profile)
	writeJSON(w, ProxyStatus(res), res)
}

// resolveProfile builds the connection profile and fills a blank secret from
// the saved router configuration when it targets the same appliance.
func (h *Handler) resolveProfile(w http.ResponseWriter, r *http.Request, req ConnectionRequest) (model.ConnectionProfile, bool) {
	profile := req.profile()
	profile.Vendor = model.VendorTag(req.vendor())

	profile, err := h.settings.ResolveProfile(r.Context(), profile)
	if err != nil {
		h.writeServiceError(w, r, "failed to resolve connection profile", err)
		return profile, false
	}
	return profile, true
}

// ProxyStatus maps a proxy result onto the HTTP status returned to the caller.
// Successful calls pass the upstream status through unless it forbids a body.
func ProxyStatus(res model.ProxyResult) int {
	if res.Success {
		switch {
		case res.Status < 200, res.Status == http.StatusNoContent, res.Status == http.StatusNotModified:
			return http.StatusOK
		default:
			return res.Status
		}
	}

	switch res.Code {
	case model.CodeValidationError, model.CodeUnsupportedVendor, model.CodeUnsupportedMethod:
		return http.StatusBadRequest
	case model.CodeTimeout:
		return http.StatusGatewayTimeout
	case model.CodeConnectionError, model.CodeRequestError, model.CodeAuthError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
