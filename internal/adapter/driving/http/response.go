package httphandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/routergate/internal/domain/model"
)

// maxBodyBytes bounds every JSON request body accepted by the API.
const maxBodyBytes = 1 << 20

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// decodeJSON reads a bounded JSON body into v. An empty body is an error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("empty body")
	}
	return json.Unmarshal(body, v)
}

// flexString accepts either a JSON string or a JSON number. Frontends send
// ports both ways.
type flexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts either a JSON number or a numeric string.
type flexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexInt) UnmarshalJSON(data []byte) error {
	var raw flexString
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	if raw == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return fmt.Errorf("expected integer, got %s", data)
	}
	*f = flexInt(n)
	return nil
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status           string            `json:"status"`
	Time             string            `json:"time"`
	SupportedVendors []model.VendorTag `json:"supported_types"`
}

// ConnectionRequest is the JSON body shared by the proxy and test-connection
// endpoints. routerType, password and useHttps are accepted as aliases.
type ConnectionRequest struct {
	VendorTag          string     `json:"vendorTag"`
	RouterType         string     `json:"routerType"`
	Endpoint           string     `json:"endpoint"`
	Port               flexString `json:"port"`
	User               string     `json:"user"`
	Secret             string     `json:"secret"`
	Password           string     `json:"password"`
	UseSecureTransport *bool      `json:"useSecureTransport"`
	UseHTTPS           *bool      `json:"useHttps"`
}

func (c ConnectionRequest) vendor() string {
	if c.VendorTag != "" {
		return c.VendorTag
	}
	return c.RouterType
}

func (c ConnectionRequest) profile() model.ConnectionProfile {
	secret := c.Secret
	if secret == "" {
		secret = c.Password
	}
	secure := c.UseSecureTransport
	if secure == nil {
		secure = c.UseHTTPS
	}

	p := model.ConnectionProfile{
		Host:     c.Endpoint,
		Port:     string(c.Port),
		Username: c.User,
		Secret:   secret,
	}
	if secure != nil {
		p.UseHTTPS = *secure
	}
	return p
}

// ProxyRequestBody is the JSON body for the proxy endpoint.
type ProxyRequestBody struct {
	ConnectionRequest
	Path   string          `json:"path"`
	Method string          `json:"method"`
	Body   json.RawMessage `json:"body"`
}

// LoginRequest is the JSON body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and the logged-in user.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// PasswordResetRequest is the JSON body for requesting a reset link.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the JSON body for completing a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// messageResponse is a plain acknowledgement.
type messageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the JSON representation of a user. The credential is never
// serialized.
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"created_at"`
}

// CreateUserRequest is the JSON body for creating a user. Enabled defaults to true.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Enabled  *bool  `json:"enabled"`
}

// UpdateUserRequest is the JSON body for updating a user. Absent fields are
// left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Enabled  *bool   `json:"enabled"`
}

// RouterConfigRequest is the JSON body for saving the router profile.
type RouterConfigRequest struct {
	ConnectionRequest
}

// RouterConfigResponse is the stored router profile with the secret masked.
type RouterConfigResponse struct {
	RouterType string `json:"routerType"`
	Endpoint   string `json:"endpoint"`
	Port       string `json:"port"`
	User       string `json:"user"`
	UseHTTPS   bool   `json:"useHttps"`
	HasSecret  bool   `json:"hasSecret"`
	UpdatedAt  string `json:"updated_at"`
}

// SMTPConfigRequest is the JSON body for saving the SMTP relay.
type SMTPConfigRequest struct {
	Host      string  `json:"host"`
	Port      flexInt `json:"port"`
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	UseTLS    bool    `json:"useTls"`
	UseSSL    bool    `json:"useSsl"`
	FromEmail string  `json:"fromEmail"`
}

// SMTPConfigResponse is the stored SMTP relay with the password masked.
type SMTPConfigResponse struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	UseTLS      bool   `json:"useTls"`
	UseSSL      bool   `json:"useSsl"`
	FromEmail   string `json:"fromEmail"`
	HasPassword bool   `json:"hasPassword"`
	UpdatedAt   string `json:"updated_at"`
}

// TestEmailRequest is the JSON body for sending an SMTP test message.
type TestEmailRequest struct {
	ToEmail string `json:"toEmail"`
}

// WireGuardConfigRequest is the JSON body for saving WireGuard defaults.
type WireGuardConfigRequest struct {
	DefaultEndpoint string  `json:"defaultEndpoint"`
	DefaultPort     flexInt `json:"defaultPort"`
	AllowedIPRange  string  `json:"allowedIpRange"`
	ClientDNS       string  `json:"clientDns"`
}

// WireGuardConfigResponse is the stored WireGuard defaults.
type WireGuardConfigResponse struct {
	DefaultEndpoint string `json:"defaultEndpoint"`
	DefaultPort     int    `json:"defaultPort"`
	AllowedIPRange  string `json:"allowedIpRange"`
	ClientDNS       string `json:"clientDns"`
	UpdatedAt       string `json:"updated_at"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// toUserResponse converts a domain User to its JSON response representation.
func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Enabled:   u.Enabled,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func toRouterConfigResponse(c model.RouterConfig) RouterConfigResponse {
	return RouterConfigResponse{
		RouterType: string(c.Vendor),
		Endpoint:   c.Host,
		Port:       c.Port,
		User:       c.Username,
		UseHTTPS:   c.UseHTTPS,
		HasSecret:  c.Secret != "",
		UpdatedAt:  formatTime(c.UpdatedAt),
	}
}

func toSMTPConfigResponse(c model.SMTPConfig) SMTPConfigResponse {
	return SMTPConfigResponse{
		Host:        c.Host,
		Port:        c.Port,
		Username:    c.Username,
		UseTLS:      c.UseTLS,
		UseSSL:      c.UseSSL,
		FromEmail:   c.FromEmail,
		HasPassword: c.Password != "",
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

func toWireGuardConfigResponse(c model.WireGuardConfig) WireGuardConfigResponse {
	return WireGuardConfigResponse{
		DefaultEndpoint: c.DefaultEndpoint,
		DefaultPort:     c.DefaultPort,
		AllowedIPRange:  c.AllowedIPRange,
		ClientDNS:       c.ClientDNS,
		UpdatedAt:       formatTime(c.UpdatedAt),
	}
}
