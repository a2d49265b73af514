// Package memory provides an in-memory implementation of the repository
// interfaces used for tests and ephemeral environments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/repository"
)

// Compile-time contract assertions.
var (
	_ repository.Transactor           = (*Store)(nil)
	_ repository.DepartmentRepository = departmentStore{}
	_ repository.EmployeeRepository   = employeeStore{}
	_ repository.ProjectRepository    = projectStore{}
)

// Store keeps all three entity sets behind one lock. Units of work are
// serialized by txMu so a check-then-act sequence cannot interleave with
// another writer.
type Store struct {
	txMu sync.Mutex

	mu          sync.RWMutex
	nextID      map[string]int64
	departments map[int64]domain.Department
	employees   map[int64]domain.Employee
	projects    map[int64]domain.Project
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		nextID:      map[string]int64{},
		departments: map[int64]domain.Department{},
		employees:   map[int64]domain.Employee{},
		projects:    map[int64]domain.Project{},
	}
}

type txKey struct{}

// WithinTx runs fn while holding the unit-of-work lock. Nested calls reuse
// the outer unit.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, s))
}

// Departments returns the department repository view.
func (s *Store) Departments() repository.DepartmentRepository { return departmentStore{s} }

// Employees returns the employee repository view.
func (s *Store) Employees() repository.EmployeeRepository { return employeeStore{s} }

// Projects returns the project repository view.
func (s *Store) Projects() repository.ProjectRepository { return projectStore{s} }

func (s *Store) allocID(entity string) int64 {
	s.nextID[entity]++
	return s.nextID[entity]
}

func sortedKeys[T any](m map[int64]T) []int64 {
	keys := make([]int64, 0, len(m))
	for id := range m {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func cloneEmployee(emp domain.Employee) domain.Employee {
	if emp.DepartmentID != nil {
		id := *emp.DepartmentID
		emp.DepartmentID = &id
	}
	return emp
}

// --- departments ---

type departmentStore struct{ s *Store }

func (d departmentStore) Create(_ context.Context, dept *domain.Department) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if d.s.departmentNameTaken(dept.Name, 0) {
		return repository.ErrDuplicateKey
	}
	dept.ID = d.s.allocID("departments")
	d.s.departments[dept.ID] = *dept
	return nil
}

func (d departmentStore) Update(_ context.Context, dept *domain.Department) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if _, ok := d.s.departments[dept.ID]; !ok {
		return repository.ErrNotFound
	}
	if d.s.departmentNameTaken(dept.Name, dept.ID) {
		return repository.ErrDuplicateKey
	}
	d.s.departments[dept.ID] = *dept
	return nil
}

// Delete removes the department and cascades to its employees.
func (d departmentStore) Delete(_ context.Context, id int64) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if _, ok := d.s.departments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(d.s.departments, id)
	for empID, emp := range d.s.employees {
		if emp.InDepartment(id) {
			delete(d.s.employees, empID)
		}
	}
	return nil
}

func (d departmentStore) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	dept, ok := d.s.departments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &dept, nil
}

func (d departmentStore) GetByName(_ context.Context, name string) (*domain.Department, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	for _, id := range sortedKeys(d.s.departments) {
		if dept := d.s.departments[id]; dept.Name == name {
			return &dept, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (d departmentStore) List(_ context.Context) ([]domain.Department, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	result := make([]domain.Department, 0, len(d.s.departments))
	for _, id := range sortedKeys(d.s.departments) {
		result = append(result, d.s.departments[id])
	}
	return result, nil
}

func (d departmentStore) Exists(_ context.Context, id int64) (bool, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	_, ok := d.s.departments[id]
	return ok, nil
}

func (s *Store) departmentNameTaken(name string, exceptID int64) bool {
	for id, dept := range s.departments {
		if id != exceptID && dept.Name == name {
			return true
		}
	}
	return false
}

// --- employees ---

type employeeStore struct{ s *Store }

func (e employeeStore) Create(_ context.Context, emp *domain.Employee) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if err := e.s.checkEmployee(emp, 0); err != nil {
		return err
	}
	emp.ID = e.s.allocID("employees")
	e.s.employees[emp.ID] = cloneEmployee(*emp)
	return nil
}

func (e employeeStore) Update(_ context.Context, emp *domain.Employee) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if _, ok := e.s.employees[emp.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := e.s.checkEmployee(emp, emp.ID); err != nil {
		return err
	}
	e.s.employees[emp.ID] = cloneEmployee(*emp)
	return nil
}

func (e employeeStore) Delete(_ context.Context, id int64) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if _, ok := e.s.employees[id]; !ok {
		return repository.ErrNotFound
	}
	delete(e.s.employees, id)
	return nil
}

func (e employeeStore) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	emp, ok := e.s.employees[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	emp = cloneEmployee(emp)
	return &emp, nil
}

func (e employeeStore) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	for _, id := range sortedKeys(e.s.employees) {
		if emp := e.s.employees[id]; emp.Email == email {
			emp = cloneEmployee(emp)
			return &emp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (e employeeStore) List(_ context.Context) ([]domain.Employee, error) {
	return e.filter(func(domain.Employee) bool { return true }), nil
}

func (e employeeStore) Exists(_ context.Context, id int64) (bool, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	_, ok := e.s.employees[id]
	return ok, nil
}

func (e employeeStore) ListBySalaryRange(_ context.Context, min, max decimal.Decimal) ([]domain.Employee, error) {
	result := e.filter(func(emp domain.Employee) bool {
		return emp.Salary.GreaterThanOrEqual(min) && emp.Salary.LessThanOrEqual(max)
	})
	sort.SliceStable(result, func(i, j int) bool { return result[i].Salary.LessThan(result[j].Salary) })
	return result, nil
}

func (e employeeStore) ListByDepartmentName(_ context.Context, name string) ([]domain.Employee, error) {
	e.s.mu.RLock()
	var deptIDs []int64
	for id, dept := range e.s.departments {
		if dept.Name == name {
			deptIDs = append(deptIDs, id)
		}
	}
	e.s.mu.RUnlock()

	return e.filter(func(emp domain.Employee) bool {
		for _, id := range deptIDs {
			if emp.InDepartment(id) {
				return true
			}
		}
		return false
	}), nil
}

func (e employeeStore) SalaryTotalsForDepartment(_ context.Context, departmentID int64) (domain.SalaryTotals, error) {
	totals := domain.SalaryTotals{Total: decimal.Zero}
	for _, emp := range e.filter(func(emp domain.Employee) bool { return emp.InDepartment(departmentID) }) {
		totals.Employees++
		totals.Total = totals.Total.Add(emp.Salary)
	}
	return totals, nil
}

func (e employeeStore) filter(keep func(domain.Employee) bool) []domain.Employee {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	result := []domain.Employee{}
	for _, id := range sortedKeys(e.s.employees) {
		if emp := e.s.employees[id]; keep(emp) {
			result = append(result, cloneEmployee(emp))
		}
	}
	return result
}

// checkEmployee enforces the unique email index and the department foreign key.
func (s *Store) checkEmployee(emp *domain.Employee, exceptID int64) error {
	for id, other := range s.employees {
		if id != exceptID && other.Email == emp.Email {
			return repository.ErrDuplicateKey
		}
	}
	if emp.DepartmentID != nil {
		if _, ok := s.departments[*emp.DepartmentID]; !ok {
			return repository.ErrForeignKey
		}
	}
	return nil
}

// --- projects ---

type projectStore struct{ s *Store }

func (p projectStore) Create(_ context.Context, project *domain.Project) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if p.s.projectNameTaken(project.Name, 0) {
		return repository.ErrDuplicateKey
	}
	project.ID = p.s.allocID("projects")
	p.s.projects[project.ID] = *project
	return nil
}

func (p projectStore) Update(_ context.Context, project *domain.Project) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.projects[project.ID]; !ok {
		return repository.ErrNotFound
	}
	if p.s.projectNameTaken(project.Name, project.ID) {
		return repository.ErrDuplicateKey
	}
	p.s.projects[project.ID] = *project
	return nil
}

func (p projectStore) Delete(_ context.Context, id int64) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(p.s.projects, id)
	return nil
}

func (p projectStore) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	project, ok := p.s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &project, nil
}

func (p projectStore) GetByName(_ context.Context, name string) (*domain.Project, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	for _, id := range sortedKeys(p.s.projects) {
		if project := p.s.projects[id]; project.Name == name {
			return &project, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (p projectStore) List(_ context.Context) ([]domain.Project, error) {
	return p.filter(func(domain.Project) bool { return true }), nil
}

func (p projectStore) Exists(_ context.Context, id int64) (bool, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	_, ok := p.s.projects[id]
	return ok, nil
}

func (p projectStore) ListByEndDateAfter(_ context.Context, date time.Time) ([]domain.Project, error) {
	result := p.filter(func(project domain.Project) bool {
		return project.IsActive(date)
	})
	sort.SliceStable(result, func(i, j int) bool { return result[i].EndDate.Before(result[j].EndDate) })
	return result, nil
}

func (p projectStore) ListByStartDate(_ context.Context, date time.Time) ([]domain.Project, error) {
	day := domain.DateOf(date)
	return p.filter(func(project domain.Project) bool {
		return domain.DateOf(project.StartDate).Equal(day)
	}), nil
}

func (p projectStore) filter(keep func(domain.Project) bool) []domain.Project {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	result := []domain.Project{}
	for _, id := range sortedKeys(p.s.projects) {
		if project := p.s.projects[id]; keep(project) {
			result = append(result, project)
		}
	}
	return result
}

func (s *Store) projectNameTaken(name string, exceptID int64) bool {
	for id, project := range s.projects {
		if id != exceptID && project.Name == name {
			return true
		}
	}
	return false
}
