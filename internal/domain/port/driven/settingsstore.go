package driven

import (
	"context"

	"github.com/ericfisherdev/routergate/internal/domain/model"
)

// SettingsStore persists the singleton router, SMTP and WireGuard configurations.
// Each Save replaces the current row wholesale; each Get returns (nil, nil)
// when nothing has been saved yet. Secrets are plaintext at this boundary.
type SettingsStore interface {
	GetRouterConfig(ctx context.Context) (*model.RouterConfig, error)
	SaveRouterConfig(ctx context.Context, cfg model.RouterConfig) error

	GetSMTPConfig(ctx context.Context) (*model.SMTPConfig, error)
	SaveSMTPConfig(ctx context.Context, cfg model.SMTPConfig) error

	GetWireGuardConfig(ctx context.Context) (*model.WireGuardConfig, error)
	SaveWireGuardConfig(ctx context.Context, cfg model.WireGuardConfig) error
}
