package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/portfoliobuilder/intake/cmd/server/internal/intake"
	"github.com/portfoliobuilder/intake/internal/config"
)

var tracer = otel.Tracer("github.com/portfoliobuilder/intake/cmd/server/internal/notify")

var ErrNotConfigured = errors.New("mail server is not configured")

// Ensure Mailer implements intake.Notifier interface.
var _ intake.Notifier = (*Mailer)(nil)

// Mailer sends verification codes over SMTP. A new connection is dialed per
// message.
type Mailer struct {
	cfg      *config.MailConfig
	dial     mail.DialContextFunc
	validFor time.Duration
}

func NewMailer(cfg *config.MailConfig, validFor time.Duration) *Mailer {
	return &Mailer{cfg: cfg, validFor: validFor}
}

// WithDialer routes connections through dial instead of the network.
func (m *Mailer) WithDialer(dial mail.DialContextFunc) *Mailer {
	m.dial = dial
	return m
}

func (m *Mailer) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(m.cfg.Port)}

	if m.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.cfg.Timeout))
	}

	switch {
	case m.cfg.UseSSL:
		opts = append(opts, mail.WithSSL())
	case m.cfg.UseTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	if m.dial != nil {
		opts = append(opts, mail.WithDialContextFunc(m.dial))
	}

	return opts
}

func (m *Mailer) message(code, recipient string) (*mail.Msg, error) {
	plain, html, err := Render(code, m.validFor)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Sender()); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, plain)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	return msg, nil
}

func (m *Mailer) SendCode(ctx context.Context, code, recipient string) error {
	ctx, span := tracer.Start(ctx, "Mailer.SendCode", trace.WithAttributes(
		attribute.String("host", m.cfg.Host),
		attribute.Int("port", m.cfg.Port),
	))
	defer span.End()

	if m.cfg.Host == "" || m.cfg.Sender() == "" {
		span.SetStatus(codes.Error, "mail not configured")
		return ErrNotConfigured
	}

	msg, err := m.message(code, recipient)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build message")
		return err
	}

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create mail client")
		return err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send message")
		return err
	}

	span.SetStatus(codes.Ok, "sent verification code")
	return nil
}
