package application

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/ericfisherdev/routergate/internal/domain/model"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

// SettingsService validates and stores the singleton router, SMTP and
// WireGuard configurations.
type SettingsService struct {
	store  driven.SettingsStore
	mailer driven.Mailer
	logger *slog.Logger
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(store driven.SettingsStore, mailer driven.Mailer, logger *slog.Logger) *SettingsService {
	return &SettingsService{store: store, mailer: mailer, logger: logger}
}

// RouterConfig returns the current router configuration or nil.
func (s *SettingsService) RouterConfig(ctx context.Context) (*model.RouterConfig, error) {
	return s.store.GetRouterConfig(ctx)
}

// SaveRouterConfig replaces the router configuration. A blank secret keeps
// the stored one when it targets the same appliance and user.
func (s *SettingsService) SaveRouterConfig(ctx context.Context, cfg model.RouterConfig) error {
	tag, ok := model.ParseVendorTag(string(cfg.Vendor))
	switch {
	case cfg.Vendor == "":
		return missing("routerType")
	case !ok:
		return invalid("routerType", fmt.Sprintf("unsupported vendor %q", cfg.Vendor))
	}
	cfg.Vendor = tag
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.Username = strings.TrimSpace(cfg.Username)

	if cfg.Host == "" {
		return missing("endpoint")
	}
	if cfg.Username == "" {
		return missing("user")
	}
	if cfg.Port != "" {
		if err := validatePort("port", cfg.Port); err != nil {
			return err
		}
	}

	if cfg.Secret == "" {
		current, err := s.store.GetRouterConfig(ctx)
		if err != nil {
			return fmt.Errorf("save router config: %w", err)
		}
		if current == nil || current.Host != cfg.Host || current.Username != cfg.Username {
			return missing("password")
		}
		cfg.Secret = current.Secret
	}

	if err := s.store.SaveRouterConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("router config saved", "vendor", string(cfg.Vendor), "host", cfg.Host)
	return nil
}

// ResolveProfile fills a missing secret from the stored router configuration
// when vendor, host and user match it. Profiles that would fail validation
// are returned unchanged without touching the store.
func (s *SettingsService) ResolveProfile(ctx context.Context, profile model.ConnectionProfile) (model.ConnectionProfile, error) {
	tag, ok := model.ParseVendorTag(string(profile.Vendor))
	host := strings.TrimSpace(profile.Host)
	user := strings.TrimSpace(profile.Username)
	if profile.Secret != "" || !ok || host == "" || user == "" {
		return profile, nil
	}

	current, err := s.store.GetRouterConfig(ctx)
	if err != nil {
		return profile, fmt.Errorf("resolve profile: %w", err)
	}
	if current == nil {
		return profile, nil
	}

	if tag == current.Vendor && host == current.Host && user == current.Username {
		profile.Secret = current.Secret
	}
	return profile, nil
}

// SMTPConfig returns the current SMTP configuration or nil.
func (s *SettingsService) SMTPConfig(ctx context.Context) (*model.SMTPConfig, error) {
	return s.store.GetSMTPConfig(ctx)
}

// SaveSMTPConfig replaces the SMTP configuration. A blank password keeps the
// stored one when host and username are unchanged.
func (s *SettingsService) SaveSMTPConfig(ctx context.Context, cfg model.SMTPConfig) error {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.FromEmail = strings.TrimSpace(cfg.FromEmail)

	if cfg.Host == "" {
		return missing("host")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return invalid("port", "must be between 1 and 65535")
	}
	if err := validateAddress("fromEmail", cfg.FromEmail); err != nil {
		return err
	}
	if cfg.UseSSL && cfg.UseTLS {
		return invalid("useTls", "cannot be combined with useSsl")
	}

	if cfg.Password == "" && cfg.Username != "" {
		current, err := s.store.GetSMTPConfig(ctx)
		if err != nil {
			return fmt.Errorf("save smtp config: %w", err)
		}
		if current != nil && current.Host == cfg.Host && current.Username == cfg.Username {
			cfg.Password = current.Password
		}
	}

	if err := s.store.SaveSMTPConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("smtp config saved", "host", cfg.Host, "port", cfg.Port)
	return nil
}

// SendTestEmail sends a short message through the stored relay.
func (s *SettingsService) SendTestEmail(ctx context.Context, to string) error {
	to = strings.TrimSpace(to)
	if err := validateAddress("toEmail", to); err != nil {
		return err
	}

	cfg, err := s.store.GetSMTPConfig(ctx)
	if err != nil {
		return fmt.Errorf("send test email: %w", err)
	}
	if cfg == nil {
		return ErrSMTPNotConfigured
	}

	msg := model.MailMessage{
		To:       to,
		Subject:  "routergate SMTP test",
		TextBody: fmt.Sprintf("This is a test message from **routergate**.\n\nRelay: `%s:%d`\n", cfg.Host, cfg.Port),
	}
	if err := s.mailer.Send(ctx, *cfg, msg); err != nil {
		return fmt.Errorf("send test email: %w", err)
	}
	return nil
}

// WireGuardConfig returns the current WireGuard defaults or nil.
func (s *SettingsService) WireGuardConfig(ctx context.Context) (*model.WireGuardConfig, error) {
	return s.store.GetWireGuardConfig(ctx)
}

// SaveWireGuardConfig replaces the WireGuard defaults.
func (s *SettingsService) SaveWireGuardConfig(ctx context.Context, cfg model.WireGuardConfig) error {
	cfg.DefaultEndpoint = strings.TrimSpace(cfg.DefaultEndpoint)
	cfg.AllowedIPRange = strings.TrimSpace(cfg.AllowedIPRange)
	cfg.ClientDNS = strings.TrimSpace(cfg.ClientDNS)

	if cfg.DefaultPort < 0 || cfg.DefaultPort > 65535 {
		return invalid("defaultPort", "must be between 1 and 65535")
	}
	if cfg.DefaultPort == 0 {
		cfg.DefaultPort = 51820
	}
	for _, cidr := range splitList(cfg.AllowedIPRange) {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return invalid("allowedIpRange", fmt.Sprintf("%q is not a CIDR range", cidr))
		}
	}
	for _, ip := range splitList(cfg.ClientDNS) {
		if net.ParseIP(ip) == nil {
			return invalid("clientDns", fmt.Sprintf("%q is not an IP address", ip))
		}
	}

	if err := s.store.SaveWireGuardConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("wireguard config saved", "endpoint", cfg.DefaultEndpoint, "port", cfg.DefaultPort)
	return nil
}

func validatePort(field, port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return invalid(field, "must be between 1 and 65535")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
