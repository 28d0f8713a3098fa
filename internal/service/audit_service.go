package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/records-service/internal/events"
)

// AuditService writes a structured audit trail for lifecycle transitions.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to all lifecycle events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventRecordCreated, a.handleEvent)
	a.dispatcher.Subscribe(events.EventRecordUpdated, a.handleEvent)
	a.dispatcher.Subscribe(events.EventRecordArchived, a.handleEvent)
	a.dispatcher.Subscribe(events.EventRecordRestored, a.handleEvent)
	a.dispatcher.Subscribe(events.EventRecordPurged, a.handleEvent)
}

func (a *AuditService) handleEvent(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("entity", string(event.Entity)),
		zap.String("record_id", event.RecordID),
		zap.String("event_id", event.ID),
		zap.Any("payload", event.Payload),
	)
	return nil
}
