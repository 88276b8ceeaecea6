package mailer_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/jobseek-id/auto-emailer/internal/mailer"
	"github.com/jobseek-id/auto-emailer/internal/model"
)

func identity() *model.CompleteIdentity {
	return &model.CompleteIdentity{
		Account: model.SenderIdentity{ID: 1, Email: "budi@gmail.com"},
		Profile: model.IdentityProfile{Name: "Budi Santoso", Username: "budi"},
	}
}

func writeCV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "CV_budi.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))
	return path
}

func TestBuildMessage(t *testing.T) {
	cv := writeCV(t)

	msg, err := mailer.BuildMessage(identity(), []string{"hr@x.com", "jobs@y.com"},
		"Backend Engineer - Budi Santoso", "<p>hello</p>", cv)
	require.NoError(t, err)

	from := msg.GetAddrHeaderString(mail.HeaderFrom)
	require.Len(t, from, 1)
	assert.Contains(t, from[0], "Budi Santoso (budi)")
	assert.Contains(t, from[0], "budi@gmail.com")

	to := msg.GetAddrHeaderString(mail.HeaderTo)
	require.Len(t, to, 2)
	assert.Contains(t, to[0], "hr@x.com")
	assert.Contains(t, to[1], "jobs@y.com")

	assert.Len(t, msg.GetAttachments(), 1)
}

func TestBuildMessage_MissingAttachment(t *testing.T) {
	_, err := mailer.BuildMessage(identity(), []string{"hr@x.com"},
		"subject", "<p>hello</p>", filepath.Join(t.TempDir(), "CV_absent.pdf"))
	require.ErrorIs(t, err, mailer.ErrAttachmentNotFound)
}

func TestBuildMessage_InvalidRecipient(t *testing.T) {
	cv := writeCV(t)
	_, err := mailer.BuildMessage(identity(), []string{"not-an-address"},
		"subject", "<p>hello</p>", cv)
	require.Error(t, err)
}

func TestSMTPTransport_ClientCarriesTimeout(t *testing.T) {
	sender := &model.SenderIdentity{Email: "budi@gmail.com", AppPassword: "app-pass"}

	transport := mailer.NewSMTPTransport(mailer.SMTPConfig{
		Host:       "smtp.gmail.com",
		Port:       587,
		Encryption: "starttls",
		Timeout:    45 * time.Second,
	})
	c, err := transport.NewClient(sender)
	require.NoError(t, err)
	require.NotNil(t, c)

	// Zero means the go-mail default; the option must not be forced on.
	transport = mailer.NewSMTPTransport(mailer.SMTPConfig{
		Host: "smtp.gmail.com",
		Port: 587,
	})
	c, err = transport.NewClient(sender)
	require.NoError(t, err)
	require.NotNil(t, c)
}
