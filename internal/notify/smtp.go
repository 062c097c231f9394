package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/google/uuid"

	"github.com/srcf/controlplane/pkg/mailer"
)

// SMTPSender implements mailer.Sender against the facility's local mail
// relay. Unlike a SaaS provider there's no API response to inspect for
// delivery status: once smtp.SendMail returns without error the message
// has been accepted by the relay, which is as far as this control plane's
// responsibility goes.
type SMTPSender struct {
	cfg Config
}

// NewSMTPSender constructs a sender for cfg.Host.
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send implements mailer.Sender.
func (s *SMTPSender) Send(ctx context.Context, email *mailer.Email) error {
	from := email.From
	if from == "" {
		from = mailer.Recipient(s.cfg.FromName, s.cfg.FromEmail)
	}

	recipients := make([]string, 0, len(email.To)+len(email.CC)+len(email.BCC))
	recipients = append(recipients, email.To...)
	recipients = append(recipients, email.CC...)
	recipients = append(recipients, email.BCC...)

	msg, err := buildMessage(from, email)
	if err != nil {
		return fmt.Errorf("notify: build message: %w", err)
	}

	host, _, _ := strings.Cut(s.cfg.Host, ":")
	if err := smtp.SendMail(s.cfg.Host, nil, s.cfg.FromEmail, recipients, msg); err != nil {
		return fmt.Errorf("notify: send via %s: %w", host, err)
	}
	return nil
}

// buildMessage renders a MIME multipart/alternative message carrying both
// the plain-text and HTML parts the renderer produced.
func buildMessage(from string, email *mailer.Email) ([]byte, error) {
	var buf bytes.Buffer
	boundary := "srcf-" + uuid.NewString()

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(email.To, ", "))
	if len(email.CC) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(email.CC, ", "))
	}
	if email.ReplyTo != "" {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", email.ReplyTo)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	fmt.Fprintf(&buf, "Message-Id: <%s@srcf.net>\r\n", uuid.NewString())
	for k, v := range email.Headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	if email.Text != "" {
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(email.Text)
		buf.WriteString("\r\n\r\n")
	}
	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	buf.WriteString(email.HTML)
	buf.WriteString("\r\n\r\n")
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	return buf.Bytes(), nil
}
