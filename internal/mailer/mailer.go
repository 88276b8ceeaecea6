// Package mailer builds the outbound application email and delivers it over
// SMTP using the go-mail library. One client is dialed per send so each
// identity authenticates with its own credentials; failed sends are never
// retried here.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/jobseek-id/auto-emailer/internal/model"
)

// ErrAttachmentNotFound is returned when the identity's CV file is absent.
var ErrAttachmentNotFound = errors.New("attachment not found")

// Transport delivers a built message on behalf of an identity.
type Transport interface {
	// Send connects, authenticates with the identity's credentials, sends
	// msg and closes the connection. Cancellation of ctx aborts the dial.
	Send(ctx context.Context, identity *model.SenderIdentity, msg *mail.Msg) error
}

// BuildMessage constructs the multipart message for one dispatch: From with
// the "Name (username)" display name, all targets as recipients, an HTML
// body part and the CV as a PDF attachment. The CV's absence is detected
// before any network work.
func BuildMessage(identity *model.CompleteIdentity, targets []string, subject, bodyHTML, cvPath string) (*mail.Msg, error) {
	if _, err := os.Stat(cvPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%q: %w", cvPath, ErrAttachmentNotFound)
		}
		return nil, fmt.Errorf("checking attachment %q: %w", cvPath, err)
	}

	m := mail.NewMsg()

	displayName := fmt.Sprintf("%s (%s)", identity.Profile.Name, identity.Profile.Username)
	if err := m.FromFormat(displayName, identity.Account.Email); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", identity.Account.Email, err)
	}
	if err := m.To(targets...); err != nil {
		return nil, fmt.Errorf("invalid recipients %v: %w", targets, err)
	}

	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, bodyHTML)
	m.AttachFile(cvPath)

	return m, nil
}

// SMTPConfig holds the connection parameters shared by every send.
// Credentials are per-identity and supplied at send time.
type SMTPConfig struct {
	Host       string
	Port       int
	Encryption string // "none", "starttls", "ssl_tls"

	// Timeout bounds one connect/auth/send/quit cycle. Zero keeps the
	// go-mail default.
	Timeout time.Duration
}

// SMTPTransport is the production Transport backed by go-mail.
type SMTPTransport struct {
	config SMTPConfig
}

// NewSMTPTransport returns an SMTPTransport for the given server.
func NewSMTPTransport(config SMTPConfig) *SMTPTransport {
	return &SMTPTransport{config: config}
}

// Send delivers msg authenticating as the identity.
func (t *SMTPTransport) Send(ctx context.Context, identity *model.SenderIdentity, msg *mail.Msg) error {
	c, err := t.newClient(identity)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending via %s:%d as %s: %w", t.config.Host, t.config.Port, identity.Email, err)
	}
	return nil
}

// newClient builds a go-mail client authenticating as the identity.
func (t *SMTPTransport) newClient(identity *model.SenderIdentity) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(t.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(identity.Email),
		mail.WithPassword(identity.AppPassword),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(t.config.Encryption)),
	}
	if t.config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(t.config.Timeout))
	}
	return mail.NewClient(t.config.Host, opts...)
}

// tlsPolicyFromEncryption converts the encryption string to a go-mail TLSPolicy.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls":
		return mail.TLSMandatory
	case "starttls":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}
