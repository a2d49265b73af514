package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee models a person on payroll. DepartmentID is a lookup-only
// reference and may be nil.
type Employee struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	HireDate     time.Time
	Salary       decimal.Decimal
	DepartmentID *int64
}

// InDepartment reports whether the employee is assigned to departmentID.
func (e Employee) InDepartment(departmentID int64) bool {
	return e.DepartmentID != nil && *e.DepartmentID == departmentID
}

// SalaryTotals is the raw aggregate a store computes for a department.
type SalaryTotals struct {
	Employees int64
	Total     decimal.Decimal
}

// SalaryAverage is the mean salary of a department's current employees.
// Average is zero when Employees is zero.
type SalaryAverage struct {
	DepartmentID int64
	Employees    int64
	Average      decimal.Decimal
}
