package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-directory/internal/api/dto"
	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/service"
)

// EmployeeHandler exposes /api/employees.
type EmployeeHandler struct {
	employees *service.EmployeeService
}

// NewEmployeeHandler constructs handler.
func NewEmployeeHandler(employees *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// List handles GET /api/employees.
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	emps, err := h.employees.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employeeResponses(emps)})
}

// Get handles GET /api/employees/:id.
func (h *EmployeeHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	emp, err := h.employees.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employeeResponse(emp)})
}

// Create handles POST /api/employees.
func (h *EmployeeHandler) Create(c *fiber.Ctx) error {
	emp, err := parseEmployeeRequest(c)
	if err != nil {
		return err
	}
	created, err := h.employees.Create(c.UserContext(), emp)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": employeeResponse(created)})
}

// Update handles PUT /api/employees/:id.
func (h *EmployeeHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	emp, err := parseEmployeeRequest(c)
	if err != nil {
		return err
	}
	updated, err := h.employees.Update(c.UserContext(), id, emp)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employeeResponse(updated)})
}

// Delete handles DELETE /api/employees/:id.
func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.employees.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListByDepartment handles GET /api/employees/department/:name.
func (h *EmployeeHandler) ListByDepartment(c *fiber.Ctx) error {
	emps, err := h.employees.ListByDepartmentName(c.UserContext(), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employeeResponses(emps)})
}

// ListBySalaryRange handles GET /api/employees/salary?min=&max=.
func (h *EmployeeHandler) ListBySalaryRange(c *fiber.Ctx) error {
	min, err := parseDecimalQuery(c, "min")
	if err != nil {
		return err
	}
	max, err := parseDecimalQuery(c, "max")
	if err != nil {
		return err
	}
	emps, err := h.employees.ListBySalaryRange(c.UserContext(), min, max)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employeeResponses(emps)})
}

// AverageSalary handles GET /api/employees/salary/average/:departmentId.
func (h *EmployeeHandler) AverageSalary(c *fiber.Ctx) error {
	deptID, err := parseIDParam(c, "departmentId")
	if err != nil {
		return err
	}
	avg, err := h.employees.AverageSalaryByDepartment(c.UserContext(), deptID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SalaryAverageResponse{
		DepartmentID: avg.DepartmentID,
		Employees:    avg.Employees,
		Average:      avg.Average,
	}})
}

func parseEmployeeRequest(c *fiber.Ctx) (domain.Employee, error) {
	var req dto.EmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Employee{}, invalidPayload()
	}
	hireDate, err := parseDate("hire_date", req.HireDate)
	if err != nil {
		return domain.Employee{}, err
	}
	return domain.Employee{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		HireDate:     hireDate,
		Salary:       req.Salary,
		DepartmentID: req.DepartmentID,
	}, nil
}

func employeeResponses(emps []domain.Employee) []dto.EmployeeResponse {
	resp := make([]dto.EmployeeResponse, 0, len(emps))
	for i := range emps {
		resp = append(resp, employeeResponse(&emps[i]))
	}
	return resp
}

func employeeResponse(emp *domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:           emp.ID,
		FirstName:    emp.FirstName,
		LastName:     emp.LastName,
		Email:        emp.Email,
		HireDate:     formatDate(emp.HireDate),
		Salary:       emp.Salary,
		DepartmentID: emp.DepartmentID,
	}
}
