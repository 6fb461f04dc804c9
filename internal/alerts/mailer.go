package alerts

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

type smtpConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Mailer delivers plain text email over SMTP with TLS, or through the
// Plunk HTTP API when MAIL_PROVIDER=plunk.
type Mailer struct {
	provider string
	smtp     smtpConfig
	plunk    plunkConfig
	replyTo  string
}

// NewMailerFromEnv loads mail configuration from the environment.
// SMTP needs SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM;
// Plunk needs PLUNK_API_KEY.
func NewMailerFromEnv() (*Mailer, error) {
	m := &Mailer{
		provider: os.Getenv("MAIL_PROVIDER"),
		smtp: smtpConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		plunk: plunkConfig{
			APIKey: os.Getenv("PLUNK_API_KEY"),
			From:   os.Getenv("PLUNK_FROM"),
			APIURL: os.Getenv("PLUNK_API_URL"),
		},
		replyTo: os.Getenv("MAIL_REPLY_TO"),
	}
	if m.plunk.APIURL == "" {
		m.plunk.APIURL = "https://api.useplunk.com/v1/send"
	}
	if m.provider == "" && m.plunk.APIKey != "" {
		m.provider = "plunk"
	}

	if m.provider == "plunk" {
		if m.plunk.APIKey == "" {
			return nil, fmt.Errorf("plunk not configured: set PLUNK_API_KEY")
		}
		return m, nil
	}
	if m.smtp.Host == "" || m.smtp.Port == "" || m.smtp.Username == "" || m.smtp.Password == "" || m.smtp.From == "" {
		return nil, fmt.Errorf("smtp not configured: set SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM (or set MAIL_PROVIDER=plunk)")
	}
	return m, nil
}

// Send routes the message to the configured provider.
func (m *Mailer) Send(to, subject, body string) error {
	if m.provider == "plunk" {
		return m.sendViaPlunk(to, subject, body)
	}
	return m.sendViaSMTP(to, subject, body)
}

func (m *Mailer) sendViaSMTP(to, subject, body string) error {
	addr := m.smtp.Host + ":" + m.smtp.Port

	msg := ""
	msg += fmt.Sprintf("From: %s\r\n", m.smtp.From)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	if m.replyTo != "" {
		msg += fmt.Sprintf("Reply-To: %s\r\n", m.replyTo)
	}
	msg += "MIME-Version: 1.0\r\n"
	contentType := "text/plain"
	lb := strings.ToLower(body)
	if strings.Contains(lb, "<html") || strings.Contains(lb, "<body") || strings.Contains(lb, "<!doctype html") {
		contentType = "text/html"
	}
	msg += fmt.Sprintf("Content-Type: %s; charset=\"utf-8\"\r\n", contentType)
	msg += "\r\n" + body + "\r\n"

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.smtp.Host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, m.smtp.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	auth := smtp.PlainAuth("", m.smtp.Username, m.smtp.Password, m.smtp.Host)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(m.smtp.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return c.Quit()
}
