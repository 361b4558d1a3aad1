package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/exam-trainer-service/internal/events"
)

// publishEvent sends a domain event. Failures are logged and never reach the caller.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType events.EventType, data interface{}) {
	if publisher == nil {
		return
	}
	event := events.NewEvent(eventType, data)
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			"event_type", eventType,
			"event_id", event.ID,
			"error", err)
	}
}
