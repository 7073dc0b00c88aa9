package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	mail "github.com/go-mail/mail/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/config"
)

type fakeSender struct {
	sent []*mail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*mail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestNew_DisabledIsNop(t *testing.T) {
	n := New(config.MailConfig{Enabled: false}, zerolog.Nop())
	assert.IsType(t, Nop{}, n)
	assert.NoError(t, n.NotifyAcquisition(context.Background(), "a@b.c", Acquisition{}))

	n = New(config.MailConfig{Enabled: true, Host: "smtp.example.org", Port: 587, From: "lib@example.org"}, zerolog.Nop())
	assert.IsType(t, &Mailer{}, n)
}

func TestMailer_NotifyAcquisition(t *testing.T) {
	s := &fakeSender{}
	m := newMailer("lib@example.org", s, zerolog.Nop())

	err := m.NotifyAcquisition(context.Background(), "reader@example.org", Acquisition{
		PaperTitle: "Deep Residual Learning",
		Succeeded:  true,
		SourceURL:  "https://arxiv.org/pdf/1512.03385",
		SizeBytes:  2 << 20,
	})
	require.NoError(t, err)
	require.Len(t, s.sent, 1)

	msg := s.sent[0]
	assert.Equal(t, []string{"lib@example.org"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"reader@example.org"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"PDF ready: Deep Residual Learning"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "arxiv.org/pdf/1512.03385")
	assert.Contains(t, buf.String(), "2.0 MB")
}

func TestMailer_Failure(t *testing.T) {
	s := &fakeSender{err: errors.New("connection refused")}
	m := newMailer("lib@example.org", s, zerolog.Nop())

	err := m.NotifyAcquisition(context.Background(), "reader@example.org", Acquisition{PaperTitle: "X", Error: "not a PDF"})
	assert.ErrorContains(t, err, "connection refused")
	require.Len(t, s.sent, 1)
	assert.Equal(t, []string{"PDF download failed: X"}, s.sent[0].GetHeader("Subject"))
}

func TestMailer_SkipsEmptyRecipient(t *testing.T) {
	s := &fakeSender{}
	m := newMailer("lib@example.org", s, zerolog.Nop())
	require.NoError(t, m.NotifyAcquisition(context.Background(), " ", Acquisition{}))
	assert.Empty(t, s.sent)
}

func TestAcquisitionBody(t *testing.T) {
	body := acquisitionBody(Acquisition{PaperTitle: "P", Error: "file too large"})
	assert.Contains(t, body, `"P"`)
	assert.Contains(t, body, "Reason: file too large")
	assert.Contains(t, body, "upload the file manually")
}
