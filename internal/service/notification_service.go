package service

import (
	"context"

	"github.com/google/uuid"

	"research-tutor-be/internal/pkg/logger"
	"research-tutor-be/pkg/events"
	pktNats "research-tutor-be/pkg/nats"
)

// EventDelivery defines how workflow events reach connected clients.
// Implemented by the websocket hub.
type EventDelivery interface {
	Push(sessionID uuid.UUID, eventType string, payload map[string]interface{})
}

// NotificationService bridges the NATS event bus and the websocket layer:
// every session-scoped event published by the services gets forwarded to the
// tabs watching that session.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   EventDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery EventDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start event subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	rawId, ok := payload["session_id"].(string)
	if !ok {
		// Corpus events carry no session; nobody to push to.
		s.logger.Debug("NotificationService", "Event without session scope, skipping push", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	sessionId, err := uuid.Parse(rawId)
	if err != nil {
		s.logger.Warn("NotificationService", "Event carries malformed session id", map[string]interface{}{
			"type":       event.EventType(),
			"session_id": rawId,
		})
		return nil
	}

	s.delivery.Push(sessionId, event.EventType(), payload)
	return nil
}
