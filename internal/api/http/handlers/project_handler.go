package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-directory/internal/api/dto"
	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/service"
)

// ProjectHandler exposes /api/projects.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler constructs handler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	projects, err := h.projects.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponses(projects)})
}

// Get handles GET /api/projects/:id.
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	project, err := h.projects.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// GetByName handles GET /api/projects/name/:name.
func (h *ProjectHandler) GetByName(c *fiber.Ctx) error {
	project, err := h.projects.GetByName(c.UserContext(), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// ListActive handles GET /api/projects/active.
func (h *ProjectHandler) ListActive(c *fiber.Ctx) error {
	projects, err := h.projects.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponses(projects)})
}

// ListByStartDate handles GET /api/projects/start/:date.
func (h *ProjectHandler) ListByStartDate(c *fiber.Ctx) error {
	date, err := parseDate("date", c.Params("date"))
	if err != nil {
		return err
	}
	projects, err := h.projects.ListByStartDate(c.UserContext(), date)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponses(projects)})
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	project, err := parseProjectRequest(c)
	if err != nil {
		return err
	}
	created, err := h.projects.Create(c.UserContext(), project)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": projectResponse(created)})
}

// Update handles PUT /api/projects/:id.
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	project, err := parseProjectRequest(c)
	if err != nil {
		return err
	}
	updated, err := h.projects.Update(c.UserContext(), id, project)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(updated)})
}

// Delete handles DELETE /api/projects/:id.
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.projects.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseProjectRequest(c *fiber.Ctx) (domain.Project, error) {
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Project{}, invalidPayload()
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return domain.Project{}, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return domain.Project{}, err
	}
	return domain.Project{Name: req.Name, Description: req.Description, StartDate: start, EndDate: end}, nil
}

func projectResponses(projects []domain.Project) []dto.ProjectResponse {
	resp := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		resp = append(resp, projectResponse(&projects[i]))
	}
	return resp
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		StartDate:   formatDate(project.StartDate),
		EndDate:     formatDate(project.EndDate),
	}
}
