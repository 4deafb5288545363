// Package smtpmail implements the Mailer port over net/smtp.
package smtpmail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/ericfisherdev/routergate/internal/domain/model"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

// DefaultTimeout bounds a whole SMTP session.
const DefaultTimeout = 30 * time.Second

// ErrNotConfigured is returned when the relay host or sender is missing.
var ErrNotConfigured = errors.New("smtp relay not configured")

// Compile-time interface satisfaction check.
var _ driven.Mailer = (*Mailer)(nil)

// Mailer delivers mail through the relay given on each Send. It holds no
// connection between sends.
type Mailer struct {
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewMailer creates a Mailer.
func NewMailer(logger *slog.Logger) *Mailer {
	return &Mailer{timeout: DefaultTimeout, logger: logger, now: time.Now}
}

// Send delivers msg. TextBody is treated as markdown; when HTMLBody is empty
// an HTML alternative is rendered from it.
func (m *Mailer) Send(ctx context.Context, cfg model.SMTPConfig, msg model.MailMessage) error {
	if cfg.Host == "" || cfg.Port == 0 || cfg.FromEmail == "" {
		return ErrNotConfigured
	}
	if msg.HTMLBody == "" {
		msg.HTMLBody = RenderMarkdown(msg.TextBody)
	}

	data, err := buildMessage(cfg.FromEmail, msg, m.now())
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	client, err := m.dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := m.deliver(client, cfg, msg.To, data); err != nil {
		return err
	}

	m.logger.Info("mail sent", "to", msg.To, "relay", cfg.Host, "subject", msg.Subject)
	return nil
}

func (m *Mailer) dial(ctx context.Context, cfg model.SMTPConfig) (*smtp.Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	tlsConfig := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	if cfg.UseSSL {
		tlsConn := tls.Client(conn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("tls handshake with %s: %w", addr, err)
		}
		conn = tlsConn
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp greeting from %s: %w", addr, err)
	}

	if cfg.UseTLS && !cfg.UseSSL {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			_ = client.Close()
			return nil, fmt.Errorf("relay %s does not offer STARTTLS", addr)
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("starttls with %s: %w", addr, err)
		}
	}

	return client, nil
}

func (m *Mailer) deliver(client *smtp.Client, cfg model.SMTPConfig, to string, data []byte) error {
	if cfg.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(cfg.FromEmail); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	return client.Quit()
}
