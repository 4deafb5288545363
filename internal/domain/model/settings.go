package model

import "time"

// RouterConfig is the single current router connection profile.
type RouterConfig struct {
	Vendor    VendorTag
	Host      string
	Port      string
	Username  string
	Secret    string
	UseHTTPS  bool
	UpdatedAt time.Time
}

// Profile converts the stored configuration into a ConnectionProfile.
func (c RouterConfig) Profile() ConnectionProfile {
	return ConnectionProfile{
		Vendor:   c.Vendor,
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Secret:   c.Secret,
		UseHTTPS: c.UseHTTPS,
	}
}

// SMTPConfig is the single current mail relay profile. UseSSL selects implicit
// TLS on connect; UseTLS selects STARTTLS on a plain connection.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	UseTLS    bool
	UseSSL    bool
	FromEmail string
	UpdatedAt time.Time
}

// WireGuardConfig holds the defaults used when provisioning WireGuard peers.
type WireGuardConfig struct {
	DefaultEndpoint string
	DefaultPort     int
	AllowedIPRange  string
	ClientDNS       string
	UpdatedAt       time.Time
}
