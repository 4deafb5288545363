package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/routergate/internal/domain/model"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SettingsStore = (*SettingsRepo)(nil)

// SettingsRepo is the SQLite implementation of the SettingsStore port.
// Router secrets and SMTP passwords are sealed with the cipher before write
// and opened after read.
type SettingsRepo struct {
	db     *DB
	cipher driven.SecretCipher
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(db *DB, cipher driven.SecretCipher) *SettingsRepo {
	return &SettingsRepo{db: db, cipher: cipher}
}

// GetRouterConfig returns the current router configuration, or nil, nil if none was saved.
func (r *SettingsRepo) GetRouterConfig(ctx context.Context) (*model.RouterConfig, error) {
	const query = `SELECT vendor, host, port, username, secret, use_https, updated_at
		FROM router_configs ORDER BY updated_at DESC, id DESC LIMIT 1`

	var (
		cfg       model.RouterConfig
		vendor    string
		sealed    string
		updatedAt string
	)
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&vendor, &cfg.Host, &cfg.Port, &cfg.Username, &sealed, &cfg.UseHTTPS, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get router config: %w", err)
	}

	cfg.Vendor = model.VendorTag(vendor)
	cfg.Secret = r.cipher.Decrypt(sealed)
	if cfg.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse router config updated_at: %w", err)
	}

	return &cfg, nil
}

// SaveRouterConfig replaces the current router configuration.
func (r *SettingsRepo) SaveRouterConfig(ctx context.Context, cfg model.RouterConfig) error {
	sealed, err := r.cipher.Encrypt(cfg.Secret)
	if err != nil {
		return fmt.Errorf("seal router secret: %w", err)
	}

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM router_configs`); err != nil {
			return fmt.Errorf("clear router config: %w", err)
		}

		const insert = `INSERT INTO router_configs (vendor, host, port, username, secret, use_https)
			VALUES (?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, insert, string(cfg.Vendor), cfg.Host, cfg.Port, cfg.Username, sealed, cfg.UseHTTPS); err != nil {
			return fmt.Errorf("insert router config: %w", err)
		}
		return nil
	})
}

// GetSMTPConfig returns the current SMTP configuration, or nil, nil if none was saved.
func (r *SettingsRepo) GetSMTPConfig(ctx context.Context) (*model.SMTPConfig, error) {
	const query = `SELECT host, port, username, password, use_tls, use_ssl, from_email, updated_at
		FROM smtp_configs ORDER BY updated_at DESC, id DESC LIMIT 1`

	var (
		cfg       model.SMTPConfig
		sealed    string
		updatedAt string
	)
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&cfg.Host, &cfg.Port, &cfg.Username, &sealed, &cfg.UseTLS, &cfg.UseSSL, &cfg.FromEmail, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get smtp config: %w", err)
	}

	cfg.Password = r.cipher.Decrypt(sealed)
	if cfg.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse smtp config updated_at: %w", err)
	}

	return &cfg, nil
}

// SaveSMTPConfig replaces the current SMTP configuration.
func (r *SettingsRepo) SaveSMTPConfig(ctx context.Context, cfg model.SMTPConfig) error {
	sealed, err := r.cipher.Encrypt(cfg.Password)
	if err != nil {
		return fmt.Errorf("seal smtp password: %w", err)
	}

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM smtp_configs`); err != nil {
			return fmt.Errorf("clear smtp config: %w", err)
		}

		const insert = `INSERT INTO smtp_configs (host, port, username, password, use_tls, use_ssl, from_email)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, insert, cfg.Host, cfg.Port, cfg.Username, sealed, cfg.UseTLS, cfg.UseSSL, cfg.FromEmail); err != nil {
			return fmt.Errorf("insert smtp config: %w", err)
		}
		return nil
	})
}

// GetWireGuardConfig returns the current WireGuard defaults, or nil, nil if none were saved.
func (r *SettingsRepo) GetWireGuardConfig(ctx context.Context) (*model.WireGuardConfig, error) {
	const query = `SELECT default_endpoint, default_port, allowed_ip_range, client_dns, updated_at
		FROM wireguard_configs ORDER BY updated_at DESC, id DESC LIMIT 1`

	var (
		cfg       model.WireGuardConfig
		updatedAt string
	)
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&cfg.DefaultEndpoint, &cfg.DefaultPort, &cfg.AllowedIPRange, &cfg.ClientDNS, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get wireguard config: %w", err)
	}

	if cfg.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse wireguard config updated_at: %w", err)
	}

	return &cfg, nil
}

// SaveWireGuardConfig replaces the current WireGuard defaults.
func (r *SettingsRepo) SaveWireGuardConfig(ctx context.Context, cfg model.WireGuardConfig) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM wireguard_configs`); err != nil {
			return fmt.Errorf("clear wireguard config: %w", err)
		}

		const insert = `INSERT INTO wireguard_configs (default_endpoint, default_port, allowed_ip_range, client_dns)
			VALUES (?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, insert, cfg.DefaultEndpoint, cfg.DefaultPort, cfg.AllowedIPRange, cfg.ClientDNS); err != nil {
			return fmt.Errorf("insert wireguard config: %w", err)
		}
		return nil
	})
}
