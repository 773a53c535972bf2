package chat

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"portfolio/internal/rate"
)

var (
	ErrRateLimited     = errors.New("chat rate limit exceeded")
	ErrMessageRequired = errors.New("message is required")
	ErrMessageTooLong  = errors.New("message too long")
)

type Service struct {
	limiter   *rate.WindowLimiter
	responder *Responder
	delay     time.Duration
}

func NewService(limiter *rate.WindowLimiter, responder *Responder, delay time.Duration) *Service {
	return &Service{limiter: limiter, responder: responder, delay: delay}
}

func (s *Service) Delay() time.Duration { return s.delay }

// Answer admits the caller, validates the message and returns the reply.
// The rate limit is charged before validation so junk requests count too.
func (s *Service) Answer(clientKey, message string) (string, error) {
	if !s.limiter.Allow(clientKey) {
		return "", ErrRateLimited
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrMessageRequired
	}
	if utf8.RuneCountInString(message) > MaxMessageRunes {
		return "", ErrMessageTooLong
	}
	return s.responder.Reply(message), nil
}
