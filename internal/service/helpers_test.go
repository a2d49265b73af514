package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/cache"
	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/repository/memory"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store       *memory.Store
	departments *DepartmentService
	employees   *EmployeeService
	projects    *ProjectService
	events      *recorder
}

func newFixture(t *testing.T, entityCache *cache.EntityCache) *fixture {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	rec := &recorder{}
	for _, eventType := range events.AllTypes {
		dispatcher.Subscribe(eventType, rec.handle)
	}

	return &fixture{
		store: store,
		departments: NewDepartmentService(DepartmentDependencies{
			DepartmentRepo: store.Departments(),
			Transactor:     store,
			Cache:          entityCache,
			Dispatcher:     dispatcher,
		}),
		employees: NewEmployeeService(EmployeeDependencies{
			EmployeeRepo:   store.Employees(),
			DepartmentRepo: store.Departments(),
			Transactor:     store,
			Cache:          entityCache,
			Dispatcher:     dispatcher,
		}),
		projects: NewProjectService(ProjectDependencies{
			ProjectRepo: store.Projects(),
			Transactor:  store,
			Cache:       entityCache,
			Dispatcher:  dispatcher,
			Clock:       fixedClock,
		}),
		events: rec,
	}
}

func setupTestCache(t *testing.T) (*cache.EntityCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return cache.NewEntityCache(client, "svc", time.Minute, zap.NewNop()), mr
}

func int64Ptr(v int64) *int64 { return &v }
