package model

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ConnectionProfile describes how to reach one appliance. Port is optional;
// session-based vendors substitute their own default when it is empty.
type ConnectionProfile struct {
	Vendor   VendorTag
	Host     string
	Port     string
	Username string
	Secret   string
	UseHTTPS bool
}

// Scheme returns the URL scheme selected by UseHTTPS.
func (p ConnectionProfile) Scheme() string {
	if p.UseHTTPS {
		return "https"
	}
	return "http"
}

// ProxyRequest is a single pass-through call against a vendor API.
type ProxyRequest struct {
	Path   string
	Method string
	Body   json.RawMessage
}

// NormalizedMethod returns the upper-cased method, defaulting to GET.
func (r ProxyRequest) NormalizedMethod() string {
	m := strings.ToUpper(strings.TrimSpace(r.Method))
	if m == "" {
		return http.MethodGet
	}
	return m
}

// ErrorCode classifies a failed proxy call.
type ErrorCode string

const (
	CodeUnsupportedMethod ErrorCode = "UNSUPPORTED_METHOD"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeConnectionError   ErrorCode = "CONNECTION_ERROR"
	CodeRequestError      ErrorCode = "REQUEST_ERROR"
	CodeAuthError         ErrorCode = "AUTH_ERROR"
	CodeInternalError     ErrorCode = "INTERNAL_ERROR"
	CodeUnsupportedVendor ErrorCode = "UnsupportedVendor"
	CodeValidationError   ErrorCode = "ValidationError"
)

// ProxyResult is the normalized outcome of a proxy call. Failures are values,
// never Go errors: Success is false and Code says why.
type ProxyResult struct {
	Success    bool              `json:"success"`
	Status     int               `json:"status"`
	Data       json.RawMessage   `json:"data,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	DurationMS float64           `json:"duration_ms"`
	URL        string            `json:"url,omitempty"`
	Method     string            `json:"method,omitempty"`
	Vendor     VendorTag         `json:"vendor"`
	Scheme     string            `json:"scheme,omitempty"`
	Error      string            `json:"error,omitempty"`
	Code       ErrorCode         `json:"code,omitempty"`

	// Field names the offending input for ValidationError results.
	Field string `json:"field,omitempty"`
	// SupportedVendors is set on UnsupportedVendor results.
	SupportedVendors []VendorTag `json:"supported_types,omitempty"`
}

// FailedResult builds an unsuccessful result for vendor with the given code and message.
func FailedResult(vendor VendorTag, code ErrorCode, message string) ProxyResult {
	return ProxyResult{
		Success: false,
		Vendor:  vendor,
		Code:    code,
		Error:   message,
	}
}
