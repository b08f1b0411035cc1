package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs sends without delivering. Used when no Resend key is
// configured, so local development never emails real staff.
type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records the would-be delivery.
// POST: Returns a synthetic MessageID; nothing leaves the process
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("email_event", "event", "noop_send", "to", req.To, "subject", req.Subject)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
