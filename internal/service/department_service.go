package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/org-directory/internal/cache"
	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/repository"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// DepartmentService enforces department naming and existence rules.
type DepartmentService struct {
	departments repository.DepartmentRepository
	tx          repository.Transactor
	cache       *cache.EntityCache
	dispatcher  events.Dispatcher
}

// DepartmentDependencies bundles collaborators for the department service.
type DepartmentDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	Transactor     repository.Transactor
	Cache          *cache.EntityCache
	Dispatcher     events.Dispatcher
}

// NewDepartmentService constructs the service.
func NewDepartmentService(deps DepartmentDependencies) *DepartmentService {
	return &DepartmentService{
		departments: deps.DepartmentRepo,
		tx:          deps.Transactor,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
	}
}

// Create stores a department whose name is not yet taken.
func (s *DepartmentService) Create(ctx context.Context, input domain.Department) (*domain.Department, error) {
	dept := normalizeDepartment(input)
	dept.ID = 0
	if err := validateDepartment(dept); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureNameFree(ctx, dept.Name, 0); err != nil {
			return err
		}
		return s.translateWrite(s.departments.Create(ctx, &dept), dept.Name)
	})
	if err != nil {
		return nil, passThrough(err)
	}

	s.publish(ctx, events.EventDepartmentCreated, &dept)
	return &dept, nil
}

// GetByID fetches a department.
func (s *DepartmentService) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	var cached domain.Department
	if s.cache.Get(ctx, cache.EntityDepartment, id, &cached) {
		return &cached, nil
	}
	version, fillable := s.cache.Version(ctx, cache.EntityDepartment)
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "department", map[string]any{"id": id})
	}
	if fillable {
		s.cache.SetIfVersion(ctx, cache.EntityDepartment, dept.ID, version, dept)
	}
	return dept, nil
}

// GetByName fetches a department by its exact name.
func (s *DepartmentService) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	dept, err := s.departments.GetByName(ctx, name)
	if err != nil {
		return nil, notFoundOr(err, "department", map[string]any{"name": name})
	}
	return dept, nil
}

// List returns every department.
func (s *DepartmentService) List(ctx context.Context) ([]domain.Department, error) {
	depts, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return depts, nil
}

// Update overwrites department id with input. The name may stay the same
// but must not collide with another department.
func (s *DepartmentService) Update(ctx context.Context, id int64, input domain.Department) (*domain.Department, error) {
	dept := normalizeDepartment(input)
	dept.ID = id
	if err := validateDepartment(dept); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := requireExists(ctx, s.departments.Exists, "department", id); err != nil {
			return err
		}
		if err := s.ensureNameFree(ctx, dept.Name, id); err != nil {
			return err
		}
		err := s.departments.Update(ctx, &dept)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("department", map[string]any{"id": id})
		}
		return s.translateWrite(err, dept.Name)
	})
	if err != nil {
		return nil, passThrough(err)
	}

	s.cache.Invalidate(ctx, cache.EntityDepartment, id)
	s.publish(ctx, events.EventDepartmentUpdated, &dept)
	return &dept, nil
}

// Delete removes the department and, through the store, its employees.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	var deleted *domain.Department
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		dept, err := s.departments.GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "department", map[string]any{"id": id})
		}
		deleted = dept
		return notFoundOr(s.departments.Delete(ctx, id), "department", map[string]any{"id": id})
	})
	if err != nil {
		return passThrough(err)
	}

	s.cache.Invalidate(ctx, cache.EntityDepartment, id)
	s.cache.InvalidateEntity(ctx, cache.EntityEmployee)
	s.publish(ctx, events.EventDepartmentDeleted, deleted)
	return nil
}

func (s *DepartmentService) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.departments.GetByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return apperrors.MapError(err)
	case existing.ID != selfID:
		return apperrors.NewAlreadyExists("department", map[string]any{"name": name})
	}
	return nil
}

func (s *DepartmentService) translateWrite(err error, name string) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return apperrors.NewAlreadyExists("department", map[string]any{"name": name})
	}
	if err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *DepartmentService) publish(ctx context.Context, eventType events.EventType, dept *domain.Department) {
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     eventType,
		EntityID: dept.ID,
		Payload:  events.DepartmentPayload{Name: dept.Name},
	})
}

func normalizeDepartment(dept domain.Department) domain.Department {
	dept.Name = strings.TrimSpace(dept.Name)
	dept.Description = strings.TrimSpace(dept.Description)
	return dept
}

func validateDepartment(dept domain.Department) error {
	if dept.Name == "" {
		return apperrors.NewValidationError("name required", map[string]any{"field": "name"})
	}
	return firstErr(
		checkLength("name", dept.Name, maxNameLength),
		checkLength("description", dept.Description, maxDescriptionLength),
	)
}
