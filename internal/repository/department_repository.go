package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kpredict/predict-backend/internal/model"
)

// DepartmentRepository handles recruiting-track reference data access.
type DepartmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository creates a new DepartmentRepository.
func NewDepartmentRepository(pool *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

// ListByExam retrieves the departments of one exam family in display order.
func (r *DepartmentRepository) ListByExam(ctx context.Context, exam string) ([]*model.Department, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam, unit, name, display_order, created_at
		 FROM departments
		 WHERE exam = $1
		 ORDER BY display_order, id`, exam)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []*model.Department
	for rows.Next() {
		d := &model.Department{}
		if err := rows.Scan(&d.ID, &d.Exam, &d.Unit, &d.Name, &d.Order, &d.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// NamesByExam returns just the department names of one exam family. These are
// the per-department rank scope keys.
func (r *DepartmentRepository) NamesByExam(ctx context.Context, exam string) ([]string, error) {
	departments, err := r.ListByExam(ctx, exam)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(departments))
	for _, d := range departments {
		names = append(names, d.Name)
	}
	return names, nil
}

// Create inserts one department row, ignoring duplicates of the same
// (exam, unit, name) so seeding stays idempotent.
func (r *DepartmentRepository) Create(ctx context.Context, d *model.Department) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO departments (exam, unit, name, display_order)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam, unit, name) DO NOTHING`,
		d.Exam, d.Unit, d.Name, d.Order)
	return err
}
