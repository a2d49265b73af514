package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/repository"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDepartmentCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Departments()

	it := &domain.Department{Name: "IT", Description: "Technology"}
	require.NoError(t, repo.Create(ctx, it))
	assert.Equal(t, int64(1), it.ID)

	assert.ErrorIs(t, repo.Create(ctx, &domain.Department{Name: "IT"}), repository.ErrDuplicateKey)

	got, err := repo.GetByName(ctx, "IT")
	require.NoError(t, err)
	assert.Equal(t, *it, *got)

	it.Description = "Tech"
	require.NoError(t, repo.Update(ctx, it))
	got, err = repo.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tech", got.Description)

	exists, err := repo.Exists(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, it.ID))
	assert.ErrorIs(t, repo.Delete(ctx, it.ID), repository.ErrNotFound)
	_, err = repo.GetByID(ctx, it.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, it), repository.ErrNotFound)
}

func TestDepartmentDeleteCascadesToEmployees(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	hr := &domain.Department{Name: "HR"}
	ops := &domain.Department{Name: "Ops"}
	require.NoError(t, store.Departments().Create(ctx, hr))
	require.NoError(t, store.Departments().Create(ctx, ops))

	require.NoError(t, store.Employees().Create(ctx, &domain.Employee{Email: "a@corp.io", DepartmentID: &hr.ID}))
	require.NoError(t, store.Employees().Create(ctx, &domain.Employee{Email: "b@corp.io", DepartmentID: &ops.ID}))
	require.NoError(t, store.Employees().Create(ctx, &domain.Employee{Email: "c@corp.io"}))

	require.NoError(t, store.Departments().Delete(ctx, hr.ID))

	remaining, err := store.Employees().List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "b@corp.io", remaining[0].Email)
	assert.Equal(t, "c@corp.io", remaining[1].Email)
}

func TestEmployeeQueries(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	it := &domain.Department{Name: "IT"}
	require.NoError(t, store.Departments().Create(ctx, it))

	emps := store.Employees()
	for _, e := range []domain.Employee{
		{Email: "low@corp.io", Salary: decimal.RequireFromString("40000.00"), DepartmentID: &it.ID},
		{Email: "high@corp.io", Salary: decimal.RequireFromString("60000.00"), DepartmentID: &it.ID},
		{Email: "loose@corp.io", Salary: decimal.RequireFromString("50000.00")},
	} {
		emp := e
		require.NoError(t, emps.Create(ctx, &emp))
	}

	ranged, err := emps.ListBySalaryRange(ctx, decimal.RequireFromString("40000"), decimal.RequireFromString("50000"))
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, "low@corp.io", ranged[0].Email)
	assert.Equal(t, "loose@corp.io", ranged[1].Email)

	byDept, err := emps.ListByDepartmentName(ctx, "IT")
	require.NoError(t, err)
	assert.Len(t, byDept, 2)

	none, err := emps.ListByDepartmentName(ctx, "Nope")
	require.NoError(t, err)
	assert.Empty(t, none)

	totals, err := emps.SalaryTotalsForDepartment(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Employees)
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("100000")))

	empty, err := emps.SalaryTotalsForDepartment(ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, empty.Employees)
	assert.True(t, empty.Total.IsZero())
}

func TestEmployeeConstraints(t *testing.T) {
	ctx := context.Background()
	emps := NewStore().Employees()

	first := &domain.Employee{Email: "dup@corp.io"}
	require.NoError(t, emps.Create(ctx, first))
	assert.ErrorIs(t, emps.Create(ctx, &domain.Employee{Email: "dup@corp.io"}), repository.ErrDuplicateKey)

	missing := int64(42)
	assert.ErrorIs(t, emps.Create(ctx, &domain.Employee{Email: "x@corp.io", DepartmentID: &missing}), repository.ErrForeignKey)

	first.FirstName = "Ana"
	require.NoError(t, emps.Update(ctx, first))
	got, err := emps.GetByEmail(ctx, "dup@corp.io")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FirstName)
}

func TestEmployeeReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	dept := &domain.Department{Name: "IT"}
	require.NoError(t, store.Departments().Create(ctx, dept))
	emp := &domain.Employee{Email: "a@corp.io", DepartmentID: &dept.ID}
	require.NoError(t, store.Employees().Create(ctx, emp))

	got, err := store.Employees().GetByID(ctx, emp.ID)
	require.NoError(t, err)
	*got.DepartmentID = 99

	again, err := store.Employees().GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, dept.ID, *again.DepartmentID)
}

func TestProjectDateQueries(t *testing.T) {
	ctx := context.Background()
	projects := NewStore().Projects()

	require.NoError(t, projects.Create(ctx, &domain.Project{Name: "past", StartDate: date(2026, 1, 1), EndDate: date(2026, 3, 9)}))
	require.NoError(t, projects.Create(ctx, &domain.Project{Name: "today", StartDate: date(2026, 1, 1), EndDate: date(2026, 3, 10)}))
	require.NoError(t, projects.Create(ctx, &domain.Project{Name: "future", StartDate: date(2026, 2, 1), EndDate: date(2026, 5, 10)}))
	assert.ErrorIs(t, projects.Create(ctx, &domain.Project{Name: "future"}), repository.ErrDuplicateKey)

	active, err := projects.ListByEndDateAfter(ctx, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "future", active[0].Name)

	started, err := projects.ListByStartDate(ctx, date(2026, 1, 1))
	require.NoError(t, err)
	assert.Len(t, started, 2)
}

func TestListByEndDateAfterMatchesIsActive(t *testing.T) {
	ctx := context.Background()
	projects := NewStore().Projects()
	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)

	for i, end := range []time.Time{date(2026, 3, 9), date(2026, 3, 10), date(2026, 3, 11), date(2027, 1, 1)} {
		require.NoError(t, projects.Create(ctx, &domain.Project{
			Name:      string(rune('a' + i)),
			StartDate: date(2026, 1, 1),
			EndDate:   end,
		}))
	}

	all, err := projects.List(ctx)
	require.NoError(t, err)
	var want []string
	for _, project := range all {
		if project.IsActive(now) {
			want = append(want, project.Name)
		}
	}

	active, err := projects.ListByEndDateAfter(ctx, now)
	require.NoError(t, err)
	var got []string
	for _, project := range active {
		got = append(got, project.Name)
	}
	assert.Equal(t, []string{"c", "d"}, got)
	assert.ElementsMatch(t, want, got)
}

func TestWithinTxSerializesUnitsOfWork(t *testing.T) {
	store := NewStore()
	depts := store.Departments()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(context.Background(), func(ctx context.Context) error {
				if _, err := depts.GetByName(ctx, "Finance"); err == nil {
					return errors.New("taken")
				}
				return depts.Create(ctx, &domain.Department{Name: "Finance"})
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestWithinTxNested(t *testing.T) {
	store := NewStore()
	calls := 0
	err := store.WithinTx(context.Background(), func(ctx context.Context) error {
		return store.WithinTx(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
