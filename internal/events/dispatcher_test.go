package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string

	d.Subscribe(EventProjectCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventProjectCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "second")
		return nil
	})
	d.Subscribe(EventProjectDeleted, func(_ context.Context, e Event) error {
		seen = append(seen, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventProjectCreated, EntityID: 1})
	assert.EqualError(t, err, "first failed")
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventEmployeeDeleted}))
}

func TestAllTypesUnique(t *testing.T) {
	seen := map[EventType]bool{}
	for _, et := range AllTypes {
		assert.False(t, seen[et], "duplicate %s", et)
		seen[et] = true
	}
	assert.Len(t, seen, 9)
}
