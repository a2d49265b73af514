package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/org-directory/internal/cache"
	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/repository"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// ProjectService manages projects and date-window queries.
type ProjectService struct {
	projects   repository.ProjectRepository
	tx         repository.Transactor
	cache      *cache.EntityCache
	dispatcher events.Dispatcher
	now        Clock
}

// ProjectDependencies bundles collaborators for the project service.
// Clock defaults to time.Now.
type ProjectDependencies struct {
	ProjectRepo repository.ProjectRepository
	Transactor  repository.Transactor
	Cache       *cache.EntityCache
	Dispatcher  events.Dispatcher
	Clock       Clock
}

// NewProjectService constructs the service. A nil Clock means time.Now.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	return &ProjectService{
		projects:   deps.ProjectRepo,
		tx:         deps.Transactor,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		now:        clockOrDefault(deps.Clock),
	}
}

// Create stores a project whose name is not yet taken. The end date,
// when set, must not precede the start date.
func (s *ProjectService) Create(ctx context.Context, input domain.Project) (*domain.Project, error) {
	project := normalizeProject(input)
	project.ID = 0
	if err := validateProject(project); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureNameFree(ctx, project.Name, 0); err != nil {
			return err
		}
		return s.translateWrite(s.projects.Create(ctx, &project), project.Name)
	})
	if err != nil {
		return nil, passThrough(err)
	}

	s.publish(ctx, events.EventProjectCreated, &project)
	return &project, nil
}

// GetByID fetches a project.
func (s *ProjectService) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	var cached domain.Project
	if s.cache.Get(ctx, cache.EntityProject, id, &cached) {
		return &cached, nil
	}
	version, fillable := s.cache.Version(ctx, cache.EntityProject)
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "project", map[string]any{"id": id})
	}
	if fillable {
		s.cache.SetIfVersion(ctx, cache.EntityProject, project.ID, version, project)
	}
	return project, nil
}

// GetByName fetches a project by its exact name.
func (s *ProjectService) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	project, err := s.projects.GetByName(ctx, name)
	if err != nil {
		return nil, notFoundOr(err, "project", map[string]any{"name": name})
	}
	return project, nil
}

// List returns every project.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return projects, nil
}

// Update replaces every field of project id under the same name and
// date rules as Create.
func (s *ProjectService) Update(ctx context.Context, id int64, input domain.Project) (*domain.Project, error) {
	project := normalizeProject(input)
	project.ID = id
	if err := validateProject(project); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := requireExists(ctx, s.projects.Exists, "project", id); err != nil {
			return err
		}
		if err := s.ensureNameFree(ctx, project.Name, id); err != nil {
			return err
		}
		err := s.projects.Update(ctx, &project)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("project", map[string]any{"id": id})
		}
		return s.translateWrite(err, project.Name)
	})
	if err != nil {
		return nil, passThrough(err)
	}

	s.cache.Invalidate(ctx, cache.EntityProject, id)
	s.publish(ctx, events.EventProjectUpdated, &project)
	return &project, nil
}

// Delete removes project id.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	var deleted *domain.Project
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		project, err := s.projects.GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "project", map[string]any{"id": id})
		}
		deleted = project
		return notFoundOr(s.projects.Delete(ctx, id), "project", map[string]any{"id": id})
	})
	if err != nil {
		return passThrough(err)
	}

	s.cache.Invalidate(ctx, cache.EntityProject, id)
	s.publish(ctx, events.EventProjectDeleted, deleted)
	return nil
}

// ListActive returns projects whose end date is after today. Today is
// read from the clock on every call.
func (s *ProjectService) ListActive(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.projects.ListByEndDateAfter(ctx, domain.DateOf(s.now()))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return projects, nil
}

// ListByStartDate returns projects that start on the given calendar day.
func (s *ProjectService) ListByStartDate(ctx context.Context, date time.Time) ([]domain.Project, error) {
	projects, err := s.projects.ListByStartDate(ctx, domain.DateOf(date))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return projects, nil
}

func (s *ProjectService) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.projects.GetByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return apperrors.MapError(err)
	case existing.ID != selfID:
		return apperrors.NewAlreadyExists("project", map[string]any{"name": name})
	}
	return nil
}

func (s *ProjectService) translateWrite(err error, name string) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return apperrors.NewAlreadyExists("project", map[string]any{"name": name})
	}
	if err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *ProjectService) publish(ctx context.Context, eventType events.EventType, project *domain.Project) {
	payload := events.ProjectPayload{Name: project.Name}
	if !project.EndDate.IsZero() {
		payload.EndDate = project.EndDate.Format(domain.DateLayout)
	}
	publishEvent(ctx, s.dispatcher, events.Event{Type: eventType, EntityID: project.ID, Payload: payload})
}

func normalizeProject(project domain.Project) domain.Project {
	project.Name = strings.TrimSpace(project.Name)
	project.Description = strings.TrimSpace(project.Description)
	if !project.StartDate.IsZero() {
		project.StartDate = domain.DateOf(project.StartDate)
	}
	if !project.EndDate.IsZero() {
		project.EndDate = domain.DateOf(project.EndDate)
	}
	return project
}

func validateProject(project domain.Project) error {
	if project.Name == "" {
		return apperrors.NewValidationError("name required", map[string]any{"field": "name"})
	}
	if err := firstErr(
		checkLength("name", project.Name, maxNameLength),
		checkLength("description", project.Description, maxDescriptionLength),
	); err != nil {
		return err
	}
	if !project.StartDate.IsZero() && !project.EndDate.IsZero() && project.EndDate.Before(project.StartDate) {
		return apperrors.NewInvalidArgument("end date precedes start date", map[string]any{
			"start_date": project.StartDate.Format(domain.DateLayout),
			"end_date":   project.EndDate.Format(domain.DateLayout),
		})
	}
	return nil
}
