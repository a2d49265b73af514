package dto

import "github.com/shopspring/decimal"

// EmployeeRequest is the create/update payload. Salary accepts a JSON
// number or string; HireDate uses the YYYY-MM-DD layout.
type EmployeeRequest struct {
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	HireDate     string          `json:"hire_date"`
	Salary       decimal.Decimal `json:"salary"`
	DepartmentID *int64          `json:"department_id"`
}

// EmployeeResponse mirrors a stored employee.
type EmployeeResponse struct {
	ID           int64           `json:"id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	HireDate     string          `json:"hire_date,omitempty"`
	Salary       decimal.Decimal `json:"salary"`
	DepartmentID *int64          `json:"department_id"`
}

// SalaryAverageResponse reports a department's average salary.
type SalaryAverageResponse struct {
	DepartmentID int64           `json:"department_id"`
	Employees    int64           `json:"employees"`
	Average      decimal.Decimal `json:"average"`
}
