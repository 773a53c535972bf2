package notify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"portfolio/internal/config"
)

type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender records messages instead of delivering them.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) LogSender {
	if log == nil {
		log = zap.NewNop()
	}
	return LogSender{log: log}
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	_ = ctx
	s.log.Info("email not delivered (log sender)",
		zap.String("from", msg.From),
		zap.Strings("to", msg.To),
		zap.String("reply_to", msg.ReplyTo),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
		zap.Int("text_bytes", len(msg.Text)))
	return nil
}

func NewSender(cfg config.Config, log *zap.Logger) Sender {
	switch strings.ToLower(cfg.EmailSender) {
	case "smtp":
		return SMTPSender{
			host:               cfg.SMTPHost,
			port:               cfg.SMTPPort,
			username:           cfg.SMTPUsername,
			password:           cfg.SMTPPassword,
			useTLS:             cfg.SMTPTLS,
			startTLS:           cfg.SMTPStartTLS,
			insecureSkipVerify: cfg.SMTPInsecureSkipVerify,
		}
	case "resend":
		return NewResendSender(cfg.ResendAPIURL, cfg.ResendAPIKey, nil)
	default:
		return NewLogSender(log)
	}
}
