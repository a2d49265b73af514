package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/events"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

func TestDepartmentCreateAndGet(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	created, err := f.departments.Create(ctx, domain.Department{Name: "IT", Description: "Tech"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	byID, err := f.departments.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *byID)

	byName, err := f.departments.GetByName(ctx, "IT")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	assert.Equal(t, []events.EventType{events.EventDepartmentCreated}, f.events.types())
}

func TestDepartmentCreateDuplicateName(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.departments.Create(ctx, domain.Department{Name: "Finance"})
	require.NoError(t, err)

	_, err = f.departments.Create(ctx, domain.Department{Name: "Finance", Description: "again"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyExists))

	all, err := f.departments.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDepartmentCreateRequiresName(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.departments.Create(context.Background(), domain.Department{Name: "   "})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestDepartmentGetMissing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.departments.GetByID(ctx, 42)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.departments.GetByName(ctx, "Nope")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestDepartmentUpdate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	it, err := f.departments.Create(ctx, domain.Department{Name: "IT"})
	require.NoError(t, err)
	_, err = f.departments.Create(ctx, domain.Department{Name: "HR"})
	require.NoError(t, err)

	t.Run("missing id", func(t *testing.T) {
		_, err := f.departments.Update(ctx, 999, domain.Department{Name: "X"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})

	t.Run("keeps own name", func(t *testing.T) {
		updated, err := f.departments.Update(ctx, it.ID, domain.Department{ID: 77, Name: "IT", Description: "Infra"})
		require.NoError(t, err)
		assert.Equal(t, it.ID, updated.ID)
		assert.Equal(t, "Infra", updated.Description)
	})

	t.Run("name held by another", func(t *testing.T) {
		_, err := f.departments.Update(ctx, it.ID, domain.Department{Name: "HR"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyExists))
	})
}

func TestDepartmentDeleteCascadesEmployees(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	dept, err := f.departments.Create(ctx, domain.Department{Name: "Ops"})
	require.NoError(t, err)
	_, err = f.employees.Create(ctx, domain.Employee{Email: "a@corp.io", Salary: decimal.NewFromInt(10), DepartmentID: &dept.ID})
	require.NoError(t, err)

	require.NoError(t, f.departments.Delete(ctx, dept.ID))

	_, err = f.departments.GetByID(ctx, dept.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	emps, err := f.employees.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, emps)

	err = f.departments.Delete(ctx, dept.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestDepartmentCacheInvalidation(t *testing.T) {
	entityCache, mr := setupTestCache(t)
	f := newFixture(t, entityCache)
	ctx := context.Background()

	dept, err := f.departments.Create(ctx, domain.Department{Name: "IT"})
	require.NoError(t, err)
	emp, err := f.employees.Create(ctx, domain.Employee{Email: "a@corp.io", DepartmentID: &dept.ID})
	require.NoError(t, err)

	_, err = f.departments.GetByID(ctx, dept.ID)
	require.NoError(t, err)
	_, err = f.employees.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("svc:department:1"))
	assert.True(t, mr.Exists("svc:employee:1"))

	_, err = f.departments.Update(ctx, dept.ID, domain.Department{Name: "IT", Description: "changed"})
	require.NoError(t, err)
	assert.False(t, mr.Exists("svc:department:1"))

	got, err := f.departments.GetByID(ctx, dept.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Description)

	require.NoError(t, f.departments.Delete(ctx, dept.ID))
	assert.False(t, mr.Exists("svc:department:1"))
	assert.False(t, mr.Exists("svc:employee:1"))

	_, err = f.employees.GetByID(ctx, emp.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
