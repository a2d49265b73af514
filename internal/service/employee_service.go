package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/org-directory/internal/cache"
	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/repository"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// averageScale is the number of decimal places kept in salary averages.
const averageScale = 2

// EmployeeService manages employees and salary queries.
type EmployeeService struct {
	employees   repository.EmployeeRepository
	departments repository.DepartmentRepository
	tx          repository.Transactor
	cache       *cache.EntityCache
	dispatcher  events.Dispatcher
}

// EmployeeDependencies bundles collaborators for the employee service.
type EmployeeDependencies struct {
	EmployeeRepo   repository.EmployeeRepository
	DepartmentRepo repository.DepartmentRepository
	Transactor     repository.Transactor
	Cache          *cache.EntityCache
	Dispatcher     events.Dispatcher
}

// NewEmployeeService constructs the service.
func NewEmployeeService(deps EmployeeDependencies) *EmployeeService {
	return &EmployeeService{
		employees:   deps.EmployeeRepo,
		departments: deps.DepartmentRepo,
		tx:          deps.Transactor,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
	}
}

// Create stores a new employee. The email must be unused and the
// department, when set, must already exist.
func (s *EmployeeService) Create(ctx context.Context, input domain.Employee) (*domain.Employee, error) {
	emp := normalizeEmployee(input)
	emp.ID = 0
	if err := validateEmployee(emp); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailFree(ctx, emp.Email, 0); err != nil {
			return err
		}
		if err := s.ensureDepartment(ctx, emp.DepartmentID); err != nil {
			return err
		}
		return s.translateWrite(s.employees.Create(ctx, &emp), emp)
	})
	if err != nil {
		return nil, passThrough(err)
	}

	s.publish(ctx, events.EventEmployeeCreated, &emp)
	return &emp, nil
}

// GetByID fetches an employee.
func (s *EmployeeService) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var cached domain.Employee
	if s.cache.Get(ctx, cache.EntityEmployee, id, &cached) {
		return &cached, nil
	}
	version, fillable := s.cache.Version(ctx, cache.EntityEmployee)
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "employee", map[string]any{"id": id})
	}
	if fillable {
		s.cache.SetIfVersion(ctx, cache.EntityEmployee, emp.ID, version, emp)
	}
	return emp, nil
}

// List returns every employee.
func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	emps, err := s.employees.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return emps, nil
}

// Update replaces every field of employee id.
func (s *EmployeeService) Update(ctx context.Context, id int64, input domain.Employee) (*domain.Employee, error) {
	emp := normalizeEmployee(input)
	emp.ID = id
	if err := validateEmployee(emp); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := requireExists(ctx, s.employees.Exists, "employee", id); err != nil {
			return err
		}
		if err := s.ensureEmailFree(ctx, emp.Email, id); err != nil {
			return err
		}
		if err := s.ensureDepartment(ctx, emp.DepartmentID); err != nil {
			return err
		}
		err := s.employees.Update(ctx, &emp)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("employee", map[string]any{"id": id})
		}
		return s.translateWrite(err, emp)
	})
	if err != nil {
		return nil, passThrough(err)
	}

	s.cache.Invalidate(ctx, cache.EntityEmployee, id)
	s.publish(ctx, events.EventEmployeeUpdated, &emp)
	return &emp, nil
}

// Delete removes employee id.
func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	var deleted *domain.Employee
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		emp, err := s.employees.GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "employee", map[string]any{"id": id})
		}
		deleted = emp
		return notFoundOr(s.employees.Delete(ctx, id), "employee", map[string]any{"id": id})
	})
	if err != nil {
		return passThrough(err)
	}

	s.cache.Invalidate(ctx, cache.EntityEmployee, id)
	s.publish(ctx, events.EventEmployeeDeleted, deleted)
	return nil
}

// ListByDepartmentName returns employees of the department with that exact
// name. An unknown name yields an empty slice.
func (s *EmployeeService) ListByDepartmentName(ctx context.Context, name string) ([]domain.Employee, error) {
	emps, err := s.employees.ListByDepartmentName(ctx, name)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return emps, nil
}

// ListBySalaryRange returns employees with min <= salary <= max.
func (s *EmployeeService) ListBySalaryRange(ctx context.Context, min, max decimal.Decimal) ([]domain.Employee, error) {
	if min.GreaterThan(max) {
		return nil, apperrors.NewInvalidArgument("min salary exceeds max salary", map[string]any{
			"min": min.String(),
			"max": max.String(),
		})
	}
	emps, err := s.employees.ListBySalaryRange(ctx, min, max)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return emps, nil
}

// AverageSalaryByDepartment averages the salaries of a department's
// employees. A department without employees averages to zero.
func (s *EmployeeService) AverageSalaryByDepartment(ctx context.Context, departmentID int64) (domain.SalaryAverage, error) {
	totals, err := s.employees.SalaryTotalsForDepartment(ctx, departmentID)
	if err != nil {
		return domain.SalaryAverage{}, apperrors.MapError(err)
	}

	avg := domain.SalaryAverage{DepartmentID: departmentID, Employees: totals.Employees, Average: decimal.Zero}
	if totals.Employees > 0 {
		avg.Average = totals.Total.DivRound(decimal.NewFromInt(totals.Employees), averageScale)
	}
	return avg, nil
}

func (s *EmployeeService) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.employees.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return apperrors.MapError(err)
	case existing.ID != selfID:
		return apperrors.NewEmailDuplicate(email)
	}
	return nil
}

func (s *EmployeeService) ensureDepartment(ctx context.Context, departmentID *int64) error {
	if departmentID == nil {
		return nil
	}
	return requireExists(ctx, s.departments.Exists, "department", *departmentID)
}

func (s *EmployeeService) translateWrite(err error, emp domain.Employee) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicateKey):
		return apperrors.NewEmailDuplicate(emp.Email)
	case errors.Is(err, repository.ErrForeignKey):
		return apperrors.NewNotFound("department", map[string]any{"id": emp.DepartmentID})
	default:
		return apperrors.MapError(err)
	}
}

func (s *EmployeeService) publish(ctx context.Context, eventType events.EventType, emp *domain.Employee) {
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     eventType,
		EntityID: emp.ID,
		Payload:  events.EmployeePayload{Email: emp.Email, DepartmentID: emp.DepartmentID},
	})
}

func normalizeEmployee(emp domain.Employee) domain.Employee {
	emp.FirstName = strings.TrimSpace(emp.FirstName)
	emp.LastName = strings.TrimSpace(emp.LastName)
	emp.Email = strings.TrimSpace(emp.Email)
	if !emp.HireDate.IsZero() {
		emp.HireDate = domain.DateOf(emp.HireDate)
	}
	return emp
}

func validateEmployee(emp domain.Employee) error {
	if emp.Email == "" {
		return apperrors.NewValidationError("email required", map[string]any{"field": "email"})
	}
	return firstErr(
		checkLength("email", emp.Email, maxEmailLength),
		checkLength("first_name", emp.FirstName, maxNameLength),
		checkLength("last_name", emp.LastName, maxNameLength),
		checkSalary(emp.Salary),
	)
}
