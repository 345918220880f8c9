package api

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// MailSender delivers lead notifications to the sales mailbox over SMTP.
type MailSender struct {
	dialer *gomail.Dialer
	from   string
	to     []string
}

// NewMailSender creates a MailSender.
//
// Arguments:
//   - host, port: SMTP server address.
//   - user, password: SMTP credentials; user doubles as the From address.
//   - to: recipients of every message.
//
// Returns:
//   - *MailSender: a ready sender.
//   - error: an error if the server or the recipients are missing.
func NewMailSender(host string, port int, user, password string, to []string) (*MailSender, error) {
	if host == "" || port <= 0 {
		return nil, errors.New("smtp host and port are required")
	}
	if len(to) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	return &MailSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
		to:     to,
	}, nil
}

// Send sends a plain-text message to all recipients.
func (m *MailSender) Send(subject, body string) error {
	msg := m.compose(subject, body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		logrus.WithError(err).WithField("subject", subject).Error("Error sending email")
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (m *MailSender) compose(subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}
