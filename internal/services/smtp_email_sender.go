package services

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"greenia/internal/config"
)

// SMTPSender delivers plain-text mail. With UseTLS it dials implicit TLS (port 465);
// otherwise smtp.SendMail upgrades with STARTTLS when the server offers it.
type SMTPSender struct {
	Host   string
	Port   string
	User   string
	Pass   string
	From   string
	UseTLS bool
}

// NewEmailSender returns an SMTP sender for cfg, or a LogSender when no host is set.
func NewEmailSender(cfg *config.Config) EmailSender {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" {
		return LogSender{}
	}
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &SMTPSender{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		User:   cfg.SMTPUser,
		Pass:   cfg.SMTPPassword,
		From:   from,
		UseTLS: cfg.SMTPUseTLS,
	}
}

func (s *SMTPSender) Send(to string, subject string, body string) error {
	addr := net.JoinHostPort(s.Host, s.Port)
	msg := buildMessage(s.From, to, subject, body, time.Now())
	auth := smtp.PlainAuth("", s.User, s.Pass, s.Host)

	if !s.UseTLS {
		if err := smtp.SendMail(addr, auth, s.From, []string{to}, msg); err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.Host})
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return err
	}
	defer c.Quit()
	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(s.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	_, err = w.Write(msg)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	return err
}

func buildMessage(from, to, subject, body string, now time.Time) []byte {
	var msg strings.Builder
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/plain; charset="utf-8"`},
	}
	for _, h := range headers {
		msg.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(msg.String())
}
