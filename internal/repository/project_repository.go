package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/org-directory/internal/domain"
)

// ProjectRepository encapsulates project persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	GetByName(ctx context.Context, name string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// ListByEndDateAfter returns projects whose end date is strictly after date.
	ListByEndDateAfter(ctx context.Context, date time.Time) ([]domain.Project, error)
	ListByStartDate(ctx context.Context, date time.Time) ([]domain.Project, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (name, description, start_date, end_date)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		project.Name,
		project.Description,
		project.StartDate,
		project.EndDate,
	).Scan(&project.ID)
	return translateError(err)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	const query = `
        UPDATE projects SET name=$1, description=$2, start_date=$3, end_date=$4
        WHERE id=$5`
	cmd, err := conn(ctx, r.pool).Exec(ctx, query,
		project.Name,
		project.Description,
		project.StartDate,
		project.EndDate,
		project.ID,
	)
	if err != nil {
		return translateError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return translateError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	const query = `
        SELECT id, name, description, start_date, end_date
        FROM projects WHERE id=$1`
	return scanProject(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *projectRepository) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	const query = `
        SELECT id, name, description, start_date, end_date
        FROM projects WHERE name=$1`
	return scanProject(conn(ctx, r.pool).QueryRow(ctx, query, name))
}

func (r *projectRepository) List(ctx context.Context) ([]domain.Project, error) {
	return r.list(ctx, `
        SELECT id, name, description, start_date, end_date
        FROM projects ORDER BY id`)
}

func (r *projectRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id=$1)`, id).Scan(&exists)
	return exists, translateError(err)
}

func (r *projectRepository) ListByEndDateAfter(ctx context.Context, date time.Time) ([]domain.Project, error) {
	return r.list(ctx, `
        SELECT id, name, description, start_date, end_date
        FROM projects WHERE end_date > $1
        ORDER BY end_date, id`, date)
}

func (r *projectRepository) ListByStartDate(ctx context.Context, date time.Time) ([]domain.Project, error) {
	return r.list(ctx, `
        SELECT id, name, description, start_date, end_date
        FROM projects WHERE start_date = $1
        ORDER BY id`, date)
}

func (r *projectRepository) list(ctx context.Context, query string, args ...any) ([]domain.Project, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	result := []domain.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *project)
	}
	return result, rows.Err()
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var project domain.Project
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.StartDate,
		&project.EndDate,
	); err != nil {
		return nil, translateError(err)
	}
	return &project, nil
}
