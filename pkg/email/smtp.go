package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	TLS       bool
	Timeout   time.Duration
}

type SMTPProvider struct {
	config SMTPConfig
}

func NewSMTPProvider(config SMTPConfig) *SMTPProvider {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &SMTPProvider{config: config}
}

func (s *SMTPProvider) Name() string {
	return "smtp"
}

func (s *SMTPProvider) SendEmail(ctx context.Context, request *EmailRequest) error {
	if request.To == "" {
		return fmt.Errorf("email recipient is empty")
	}
	return s.send(ctx, request.To, s.buildMessage(request))
}

func (s *SMTPProvider) buildMessage(request *EmailRequest) string {
	var msg strings.Builder

	fromName := s.config.FromName
	if fromName == "" {
		fromName = "Distress Alerts"
	}

	fmt.Fprintf(&msg, "From: %s <%s>\r\n", fromName, s.config.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", request.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", request.Subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if request.BodyHTML != "" {
		boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())
		fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		msg.WriteString(request.BodyText)
		msg.WriteString("\r\n")

		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		msg.WriteString(request.BodyHTML)
		msg.WriteString("\r\n")

		fmt.Fprintf(&msg, "--%s--\r\n", boundary)
		return msg.String()
	}

	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(request.BodyText)

	return msg.String()
}

func (s *SMTPProvider) send(ctx context.Context, to, msg string) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	dialer := &net.Dialer{Timeout: s.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if s.config.TLS {
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.config.Username != "" && s.config.Password != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}

	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// the message is already accepted at this point
	_ = client.Quit()

	return nil
}
