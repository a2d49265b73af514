package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/org-directory/internal/domain"
)

// EmployeeRepository handles persistence for employees.
type EmployeeRepository interface {
	Create(ctx context.Context, emp *domain.Employee) error
	Update(ctx context.Context, emp *domain.Employee) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListBySalaryRange(ctx context.Context, min, max decimal.Decimal) ([]domain.Employee, error)
	ListByDepartmentName(ctx context.Context, name string) ([]domain.Employee, error)
	SalaryTotalsForDepartment(ctx context.Context, departmentID int64) (domain.SalaryTotals, error)
}

const employeeColumns = `e.id, e.first_name, e.last_name, e.email, e.hire_date, e.salary, e.department_id`

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates the repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

// Salaries travel as strings so NUMERIC keeps its exact value in both directions.
func (r *employeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	const query = `
        INSERT INTO employees (first_name, last_name, email, hire_date, salary, department_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		emp.FirstName,
		emp.LastName,
		emp.Email,
		emp.HireDate,
		emp.Salary.String(),
		emp.DepartmentID,
	).Scan(&emp.ID)
	return translateError(err)
}

func (r *employeeRepository) Update(ctx context.Context, emp *domain.Employee) error {
	const query = `
        UPDATE employees
        SET first_name=$1, last_name=$2, email=$3, hire_date=$4, salary=$5, department_id=$6
        WHERE id=$7`
	cmd, err := conn(ctx, r.pool).Exec(ctx, query,
		emp.FirstName,
		emp.LastName,
		emp.Email,
		emp.HireDate,
		emp.Salary.String(),
		emp.DepartmentID,
		emp.ID,
	)
	if err != nil {
		return translateError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return translateError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees e WHERE e.id=$1`
	return scanEmployee(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees e WHERE e.email=$1`
	return scanEmployee(conn(ctx, r.pool).QueryRow(ctx, query, email))
}

func (r *employeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees e ORDER BY e.id`
	return r.list(ctx, query)
}

func (r *employeeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE id=$1)`, id).Scan(&exists)
	return exists, translateError(err)
}

func (r *employeeRepository) ListBySalaryRange(ctx context.Context, min, max decimal.Decimal) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees e
        WHERE e.salary >= $1::numeric AND e.salary <= $2::numeric
        ORDER BY e.salary, e.id`
	return r.list(ctx, query, min.String(), max.String())
}

func (r *employeeRepository) ListByDepartmentName(ctx context.Context, name string) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees e
        JOIN departments d ON d.id = e.department_id
        WHERE d.name=$1
        ORDER BY e.id`
	return r.list(ctx, query, name)
}

func (r *employeeRepository) SalaryTotalsForDepartment(ctx context.Context, departmentID int64) (domain.SalaryTotals, error) {
	const query = `
        SELECT COUNT(*), COALESCE(SUM(salary), 0)
        FROM employees WHERE department_id=$1`
	var totals domain.SalaryTotals
	err := conn(ctx, r.pool).QueryRow(ctx, query, departmentID).Scan(&totals.Employees, &totals.Total)
	if err != nil {
		return domain.SalaryTotals{}, translateError(err)
	}
	return totals, nil
}

func (r *employeeRepository) list(ctx context.Context, query string, args ...any) ([]domain.Employee, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	result := []domain.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *emp)
	}
	return result, rows.Err()
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var emp domain.Employee
	if err := row.Scan(
		&emp.ID,
		&emp.FirstName,
		&emp.LastName,
		&emp.Email,
		&emp.HireDate,
		&emp.Salary,
		&emp.DepartmentID,
	); err != nil {
		return nil, translateError(err)
	}
	return &emp, nil
}
