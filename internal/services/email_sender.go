package services

import "github.com/rs/zerolog/log"

type EmailSender interface {
	Send(to string, subject string, body string) error
}

// LogSender writes messages to the log instead of delivering them. Used when no
// SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(to string, subject string, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("SMTP not configured, mail not delivered")
	return nil
}
