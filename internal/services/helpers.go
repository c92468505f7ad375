package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/learning-service/internal/events"
)

// publishEvent is fire-and-forget: the write it describes is already committed
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}
