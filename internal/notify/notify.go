// Package notify sends user notifications about background work.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	mail "github.com/go-mail/mail/v2"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/config"
)

// Acquisition describes the outcome of a PDF acquisition.
type Acquisition struct {
	PaperTitle string
	Succeeded  bool
	SourceURL  string
	SizeBytes  int64
	Error      string
}

// Notifier delivers acquisition notifications.
type Notifier interface {
	NotifyAcquisition(ctx context.Context, to string, a Acquisition) error
}

// Nop discards notifications.
type Nop struct{}

// NotifyAcquisition does nothing.
func (Nop) NotifyAcquisition(context.Context, string, Acquisition) error { return nil }

type sender interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer sends notifications over SMTP.
type Mailer struct {
	from   string
	dialer sender
	logger zerolog.Logger
}

// New returns a Mailer when mail is enabled and Nop otherwise.
func New(cfg config.MailConfig, logger zerolog.Logger) Notifier {
	if !cfg.Enabled {
		return Nop{}
	}
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	d.Timeout = 10 * time.Second
	return newMailer(cfg.From, d, logger)
}

func newMailer(from string, d sender, logger zerolog.Logger) *Mailer {
	return &Mailer{
		from:   from,
		dialer: d,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// NotifyAcquisition mails the outcome to the user. An empty address is a no-op.
func (m *Mailer) NotifyAcquisition(ctx context.Context, to string, a Acquisition) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := acquisitionMessage(m.from, to, a)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send acquisition mail: %w", err)
	}
	m.logger.Debug().Str("to", to).Bool("succeeded", a.Succeeded).Msg("acquisition mail sent")
	return nil
}

func acquisitionMessage(from, to string, a Acquisition) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", acquisitionSubject(a))
	msg.SetBody("text/plain", acquisitionBody(a))
	return msg
}

func acquisitionSubject(a Acquisition) string {
	if a.Succeeded {
		return "PDF ready: " + a.PaperTitle
	}
	return "PDF download failed: " + a.PaperTitle
}

func acquisitionBody(a Acquisition) string {
	var b strings.Builder
	if a.Succeeded {
		fmt.Fprintf(&b, "The PDF for %q has been added to your library.\n", a.PaperTitle)
		if a.SourceURL != "" {
			fmt.Fprintf(&b, "Source: %s\n", a.SourceURL)
		}
		if a.SizeBytes > 0 {
			fmt.Fprintf(&b, "Size: %.1f MB\n", float64(a.SizeBytes)/(1<<20))
		}
		return b.String()
	}
	fmt.Fprintf(&b, "We could not download the PDF for %q.\n", a.PaperTitle)
	if a.Error != "" {
		fmt.Fprintf(&b, "Reason: %s\n", a.Error)
	}
	b.WriteString("You can upload the file manually from the paper page.\n")
	return b.String()
}
