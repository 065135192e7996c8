package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/books-api/internal/events"
)

// StartAuditWorker subscribes a structured-log audit trail to the domain
// events the services emit.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	log := func(message string) events.EventHandler {
		return func(_ context.Context, event events.Event) error {
			logger.Info(message,
				zap.String("subject", event.Subject),
				zap.Time("at", event.Timestamp))
			return nil
		}
	}

	dispatcher.Subscribe(events.EventUserAuthenticated, log("user authenticated"))
	dispatcher.Subscribe(events.EventUserCreated, log("user created"))
	dispatcher.Subscribe(events.EventBookCreated, log("book created"))
	dispatcher.Subscribe(events.EventReviewAdded, log("review added"))
}
