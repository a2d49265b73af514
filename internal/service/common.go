package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/repository"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// Clock returns the current time. Services read it once per call.
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// notFoundOr maps repository.ErrNotFound to a NOT_FOUND domain error and
// everything else to an internal error.
func notFoundOr(err error, resource string, details map[string]any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

// passThrough keeps domain errors raised inside a unit of work intact.
func passThrough(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.MapError(err)
}

func requireExists(ctx context.Context, exists func(context.Context, int64) (bool, error), resource string, id int64) error {
	ok, err := exists(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !ok {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return nil
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	// The change is already committed; handler failures are theirs to log.
	_ = dispatcher.Publish(ctx, event)
}
