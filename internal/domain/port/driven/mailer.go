package driven

import (
	"context"

	"github.com/ericfisherdev/routergate/internal/domain/model"
)

// Mailer delivers a message through the relay described by cfg.
type Mailer interface {
	Send(ctx context.Context, cfg model.SMTPConfig, msg model.MailMessage) error
}
