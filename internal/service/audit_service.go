package service

import (
	"context"
	"fmt"

	"lms-be/internal/pkg/logger"
	"lms-be/pkg/events"
	pktNats "lms-be/pkg/nats"
)

// EventSubscriber is implemented by pkg/nats.Subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

// AuditService records every domain event from the bus in the system log,
// where admins read it back through the log endpoints.
type AuditService struct {
	subscriber EventSubscriber
	logger     logger.ILogger
}

func NewAuditService(sub EventSubscriber, log logger.ILogger) *AuditService {
	return &AuditService{subscriber: sub, logger: log}
}

func (s *AuditService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, pktNats.Subject(">"), "lms-audit", s.HandleEvent); err != nil {
		s.logger.Error("AUDIT", "Failed to start audit subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("AUDIT", "Audit subscriber started", nil)
	return nil
}

func (s *AuditService) HandleEvent(ctx context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["event"] = event.EventType()
	s.logger.Info("AUDIT", fmt.Sprintf("Event %s", event.EventType()), details)
	return nil
}
