package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/service"
)

func TestStartAuditWorkerSubscribesToAllEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	audit := service.NewAuditService(dispatcher, zap.New(core))

	StartAuditWorker(audit, zap.New(core))

	for _, eventType := range events.AllTypes {
		require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: eventType, EntityID: 1}))
	}
	assert.Equal(t, int64(len(events.AllTypes)), audit.Recorded())
	assert.Equal(t, len(events.AllTypes), logs.FilterLoggerName("audit").Len())
}

func TestStartAuditWorkerDisabled(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	StartAuditWorker(nil, zap.New(core))
	assert.Equal(t, 1, logs.FilterMessage("audit log disabled").Len())
}
