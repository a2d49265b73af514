package service

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/events"
)

// AuditService writes one structured log line per committed change.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	recorded   atomic.Int64
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{dispatcher: dispatcher, logger: logger.Named("audit")}
}

// RegisterHandlers subscribes to every entity event.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

// Recorded returns the number of events logged so far.
func (a *AuditService) Recorded() int64 {
	return a.recorded.Load()
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.recorded.Add(1)
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int64("entity_id", event.EntityID),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}
