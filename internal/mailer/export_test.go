package mailer

import (
	"github.com/wneessen/go-mail"

	"github.com/jobseek-id/auto-emailer/internal/model"
)

// NewClient exposes client construction so tests can verify the option set
// without dialing.
func (t *SMTPTransport) NewClient(identity *model.SenderIdentity) (*mail.Client, error) {
	return t.newClient(identity)
}
