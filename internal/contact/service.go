package contact

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
	"github.com/avalenz-dev/storefront-backend/pkg/logger"
)

// Notifier forwards a contact submission to the support channel.
type Notifier interface {
	SendContactMessage(ctx context.Context, name, replyTo, message string) error
}

// Service defines the behavior needed by the contact controller.
type Service interface {
	SendMessage(ctx context.Context, req ContactRequest) error
}

type service struct {
	notifier Notifier
	logg     *logger.Logger
}

// NewService constructs a contact relay with the provided notifier.
func NewService(notifier Notifier, logg *logger.Logger) (Service, error) {
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	return &service{notifier: notifier, logg: logg}, nil
}

// SendMessage validates and forwards the submission. Delivery problems are
// logged but not surfaced; the sender gets an acknowledgment either way.
func (s *service) SendMessage(ctx context.Context, req ContactRequest) error {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)
	if name == "" || email == "" || message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name, email, and message are required")
	}

	body := message
	if subject := strings.TrimSpace(req.Subject); subject != "" {
		body = fmt.Sprintf("Subject: %s\n\n%s", subject, message)
	}

	if err := s.notifier.SendContactMessage(ctx, name, email, body); err != nil && s.logg != nil {
		s.logg.Error(ctx, "contact relay delivery failed", err)
	}
	return nil
}

// LogNotifier records submissions to the structured log when no SMTP
// transport is configured.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) SendContactMessage(ctx context.Context, name, replyTo, message string) error {
	if n == nil || n.logg == nil {
		return nil
	}
	logCtx := n.logg.WithFields(ctx, map[string]any{
		"name":     name,
		"reply_to": replyTo,
		"message":  message,
	})
	n.logg.Info(logCtx, "contact message received")
	return nil
}
