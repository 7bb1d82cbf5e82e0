// Package mail delivers password-reset messages.
package mail

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
)

// Mailer delivers a password-reset link to a recipient. Delivery failures
// are the transport's concern; callers log them and move on.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// SMTPMailer sends reset mail through a plain SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SendPasswordReset sends the reset link to the recipient.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	addr := net.JoinHostPort(m.Host, m.Port)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Password Reset\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Click here to reset your password: %s\r\n\r\nThe link expires in 1 hour.\r\n", link)

	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(b.String()))
}

// LogMailer writes the reset link to the log instead of sending mail. Used
// when SMTP is not configured, and in tests.
type LogMailer struct{}

// SendPasswordReset logs the reset link.
func (LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	log.Printf("mail: password reset link for %s: %s", to, link)
	return nil
}
