// Package notify delivers booking confirmation and cancellation emails.
// Delivery is fire-and-forget: failures are logged and never retried by
// the booking core.
package notify

import (
    "fmt"
    "log"
    "net/smtp"
    "os"
)

// Mailer sends one email.  Implementations must not block the caller
// longer than a single delivery attempt.
type Mailer interface {
    SendEmail(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay configured from the
// environment (SMTP_ADDR, SMTP_FROM, optional SMTP_USER/SMTP_PASS).
type SMTPMailer struct {
    addr string
    from string
    auth smtp.Auth
}

// NewSMTPMailer builds a mailer from environment variables.  It returns
// nil when SMTP_ADDR is not set; callers should fall back to LogMailer.
func NewSMTPMailer() *SMTPMailer {
    addr := os.Getenv("SMTP_ADDR")
    if addr == "" {
        return nil
    }
    from := os.Getenv("SMTP_FROM")
    if from == "" {
        from = "noreply@ticketflix.local"
    }
    var auth smtp.Auth
    if user := os.Getenv("SMTP_USER"); user != "" {
        host := addr
        for i := 0; i < len(addr); i++ {
            if addr[i] == ':' {
                host = addr[:i]
                break
            }
        }
        auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASS"), host)
    }
    return &SMTPMailer{addr: addr, from: from, auth: auth}
}

// SendEmail delivers one message through the configured relay.
func (m *SMTPMailer) SendEmail(to, subject, body string) error {
    msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
    if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
        return fmt.Errorf("smtp send: %w", err)
    }
    return nil
}

// LogMailer writes mail to the process log instead of sending it.  Used
// in development and when no relay is configured.
type LogMailer struct{}

// SendEmail logs the message and always succeeds.
func (LogMailer) SendEmail(to, subject, _ string) error {
    log.Printf("mailer: would send %q to %s", subject, to)
    return nil
}
