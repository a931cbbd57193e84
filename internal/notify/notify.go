// Package notify delivers order confirmation emails over SMTP.
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/order"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether enough settings are present to send mail.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

var _ order.Notifier = (*SMTPNotifier)(nil)

// SMTPNotifier implements order.Notifier by rendering the invoice and
// sending it through a plain SMTP relay.
type SMTPNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier creates an SMTP-backed notifier.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// SendInvoice renders the HTML invoice for the order and sends it to the
// customer.
func (n *SMTPNotifier) SendInvoice(ctx context.Context, to string, o *order.Order, customerName string) error {
	body, err := RenderInvoice(o, customerName)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		n.cfg.From, to, InvoiceSubject(o), body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	// net/smtp has no context support; rely on the server-side timeouts of
	// the relay. Checkout treats any failure here as non-fatal anyway.
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return errors.Wrap(err, "send mail")
	}
	return nil
}

var _ order.Notifier = (*NopNotifier)(nil)

// NopNotifier is used when SMTP is not configured. It logs the invoice
// instead of sending it.
type NopNotifier struct{}

// SendInvoice logs the would-be delivery and succeeds.
func (NopNotifier) SendInvoice(ctx context.Context, to string, o *order.Order, _ string) error {
	zctx.From(ctx).Debug("smtp not configured, invoice not sent",
		zap.String("order_id", o.ID),
		zap.String("to", to),
	)
	return nil
}
