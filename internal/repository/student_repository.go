package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kpredict/predict-backend/internal/model"
	"github.com/rs/zerolog"
)

// ErrDuplicateStudent flags a lookup that matched more than one row where
// exactly one was expected. The caller skips the write and logs it.
var ErrDuplicateStudent = errors.New("duplicate student records for lookup")

// StudentRepository handles student registration data access.
type StudentRepository struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool, log zerolog.Logger) *StudentRepository {
	return &StudentRepository{
		pool: pool,
		log:  log.With().Str("component", "student_repository").Logger(),
	}
}

const studentColumns = `id, exam_id, name, serial, unit, department, password_hash,
	sheets, all_confirmed_at, rank, created_at, updated_at`

func scanStudent(row pgx.Row) (*model.Student, error) {
	s := &model.Student{}
	var sheets, rank []byte

	err := row.Scan(&s.ID, &s.ExamID, &s.Name, &s.Serial, &s.Unit, &s.Department,
		&s.PasswordHash, &sheets, &s.AllConfirmedAt, &rank, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalInto(sheets, &s.Sheets); err != nil {
		return nil, fmt.Errorf("decode sheets: %w", err)
	}
	if err := unmarshalInto(rank, &s.Rank); err != nil {
		return nil, fmt.Errorf("decode rank: %w", err)
	}
	return s, nil
}

// GetByID retrieves one student registration.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	return scanStudent(row)
}

// GetBySerial retrieves one registration by offering and serial. A lookup
// matching several rows reports ErrDuplicateStudent rather than silently
// picking one.
func (r *StudentRepository) GetBySerial(ctx context.Context, examID uuid.UUID, serial string) (*model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students WHERE exam_id = $1 AND serial = $2`,
		examID, serial)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found *model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		if found != nil {
			r.log.Warn().
				Str("exam_id", examID.String()).
				Str("serial", serial).
				Msg("duplicate student records, write skipped")
			return nil, ErrDuplicateStudent
		}
		found = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if found == nil {
		return nil, pgx.ErrNoRows
	}
	return found, nil
}

// ListByExam loads the full roster of one offering.
func (r *StudentRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]*model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students WHERE exam_id = $1 ORDER BY id`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create inserts a new registration with zeroed sheets.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	sheets, err := json.Marshal(s.Sheets)
	if err != nil {
		return fmt.Errorf("encode sheets: %w", err)
	}
	rank, err := json.Marshal(s.Rank)
	if err != nil {
		return fmt.Errorf("encode rank: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO students (exam_id, name, serial, unit, department, password_hash, sheets, rank)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		s.ExamID, s.Name, s.Serial, s.Unit, s.Department, s.PasswordHash, sheets, rank,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// UpdateSheets persists one student's answer sheets after a submission.
func (r *StudentRepository) UpdateSheets(ctx context.Context, s *model.Student) error {
	sheets, err := json.Marshal(s.Sheets)
	if err != nil {
		return fmt.Errorf("encode sheets: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE students
		 SET sheets = $1, all_confirmed_at = $2, updated_at = NOW()
		 WHERE id = $3`,
		sheets, s.AllConfirmedAt, s.ID)
	return err
}

// BulkUpdateResults writes recomputed sheets (scores) and rank nests for a
// batch of students in one UNNEST-driven statement. The statement runs in
// its own implicit transaction: all rows or none.
func (r *StudentRepository) BulkUpdateResults(ctx context.Context, students []*model.Student) error {
	n := len(students)
	if n == 0 {
		return nil
	}

	ids := make([]int64, 0, n)
	sheets := make([][]byte, 0, n)
	ranks := make([][]byte, 0, n)
	updatedAts := make([]time.Time, n)

	now := time.Now()
	for i, s := range students {
		rawSheets, err := json.Marshal(s.Sheets)
		if err != nil {
			return fmt.Errorf("encode sheets for student %d: %w", s.ID, err)
		}
		rawRank, err := json.Marshal(s.Rank)
		if err != nil {
			return fmt.Errorf("encode rank for student %d: %w", s.ID, err)
		}
		ids = append(ids, s.ID)
		sheets = append(sheets, rawSheets)
		ranks = append(ranks, rawRank)
		updatedAts[i] = now
	}

	query := `
		UPDATE students AS s
		SET sheets = t.sheets,
		    rank = t.rank,
		    updated_at = t.updated_at
		FROM (
			SELECT
				u.id,
				u.sheets,
				u.rank,
				u.updated_at
			FROM UNNEST(
				$1::bigint[],
				$2::jsonb[],
				$3::jsonb[],
				$4::timestamptz[]
			) AS u (id, sheets, rank, updated_at)
		) AS t
		WHERE s.id = t.id
	`

	_, err := r.pool.Exec(ctx, query, ids, sheets, ranks, updatedAts)
	return err
}
