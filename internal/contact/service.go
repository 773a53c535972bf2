package contact

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"portfolio/internal/captcha"
	"portfolio/internal/logger"
	"portfolio/internal/notify"
)

const successMessage = "Message sent successfully"

var ErrSend = errors.New("contact: email send failed")

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Options struct {
	From      string
	To        string
	Signature string
	Logger    *zap.Logger
	Now       func() time.Time
}

type Service struct {
	sender    notify.Sender
	verifier  captcha.Verifier
	validator *Validator
	from      string
	to        string
	signature string
	log       *zap.Logger
	now       func() time.Time
}

func NewService(sender notify.Sender, verifier captcha.Verifier, opts Options) (*Service, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	if verifier == nil {
		verifier = captcha.NoopVerifier{}
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		sender:    sender,
		verifier:  verifier,
		validator: v,
		from:      opts.From,
		to:        opts.To,
		signature: opts.Signature,
		log:       logger.OrNop(opts.Logger),
		now:       now,
	}, nil
}

// Submit runs the honeypot, validation and captcha checks and then mails the
// owner. A filled honeypot reports success without sending anything.
func (s *Service) Submit(ctx context.Context, f Form, clientIP string) (Result, error) {
	if f.Website != "" {
		s.log.Warn("contact honeypot triggered",
			zap.String("client_ip", clientIP),
			zap.String("website", f.Website))
		return Result{Success: true, Message: successMessage}, nil
	}
	if err := s.validator.Check(f); err != nil {
		return Result{}, err
	}
	if err := s.verifier.Verify(ctx, f.CaptchaToken, clientIP); err != nil {
		s.log.Info("contact captcha rejected", zap.String("client_ip", clientIP), zap.Error(err))
		return Result{}, err
	}

	data := notify.ContactEmail{
		Name:      f.Name,
		Email:     f.Email,
		Message:   f.Message,
		Signature: s.signature,
		SentAt:    s.now(),
	}
	msg, err := notify.ContactNotification(s.from, s.to, data)
	if err != nil {
		return Result{}, errors.Wrap(err, "render contact notification")
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Error("contact email send failed", zap.String("client_ip", clientIP), zap.Error(err))
		return Result{}, errors.Wrap(ErrSend, err.Error())
	}

	if f.SendCopy {
		s.sendCopy(ctx, data)
	}
	s.log.Info("contact form submitted",
		zap.String("client_ip", clientIP),
		zap.String("name", f.Name),
		zap.Bool("send_copy", f.SendCopy))
	return Result{Success: true, Message: successMessage}, nil
}

func (s *Service) sendCopy(ctx context.Context, data notify.ContactEmail) {
	msg, err := notify.ContactConfirmation(s.from, data)
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		s.log.Error("contact confirmation send failed", zap.Error(err))
	}
}
