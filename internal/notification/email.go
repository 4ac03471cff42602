package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

//go:embed templates/event_mail.html
var templateFS embed.FS

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
	FromAddr string
}

// EmailSender implements Mailer using SMTP with STARTTLS
type EmailSender struct {
	cfg  SMTPConfig
	tmpl *template.Template
	log  *zap.Logger
}

func NewEmailSender(cfg SMTPConfig, log *zap.Logger) (*EmailSender, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/event_mail.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email template: %w", err)
	}
	return &EmailSender{cfg: cfg, tmpl: tmpl, log: log}, nil
}

// Send renders the HTML template and sends the email
func (e *EmailSender) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	if e.cfg.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	message, err := e.buildMessage(to, subject, body)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(e.cfg.Host, e.cfg.Port)
	e.log.Debug("📤 sending email", zap.Strings("to", to), zap.String("addr", addr))

	if err := e.sendMailWithTLS(ctx, addr, to, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.log.Info("✅ email sent", zap.Strings("to", to))
	return nil
}

func (e *EmailSender) buildMessage(to []string, subject, body string) ([]byte, error) {
	var htmlBody bytes.Buffer
	err := e.tmpl.Execute(&htmlBody, map[string]string{
		"Subject": subject,
		"Body":    body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", e.cfg.FromName, e.cfg.FromAddr)},
		{"To", strings.Join(to, ", ")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=\"UTF-8\""},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	msg.WriteString("\r\n")
	msg.Write(htmlBody.Bytes())
	return []byte(msg.String()), nil
}

func (e *EmailSender) sendMailWithTLS(ctx context.Context, addr string, to []string, message []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, e.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open SMTP session: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(&tls.Config{ServerName: e.cfg.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if e.cfg.Username != "" {
		auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
	}

	if err = client.Mail(e.cfg.FromAddr); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, recipient := range to {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", recipient, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = writer.Write(message); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	return client.Quit()
}
