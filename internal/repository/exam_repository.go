package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kpredict/predict-backend/internal/model"
	"github.com/kpredict/predict-backend/internal/predict"
)

// ExamRepository handles exam offering data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByOffering retrieves one exam offering by its natural key.
func (r *ExamRepository) GetByOffering(ctx context.Context, year int, exam string, round int) (*model.Exam, error) {
	e := &model.Exam{}
	var official, participants, statistics []byte

	err := r.pool.QueryRow(ctx,
		`SELECT id, year, exam, round, answer_official, answer_official_opened_at,
		        predict_closed_at, participants, statistics, created_at, updated_at
		 FROM exams
		 WHERE year = $1 AND exam = $2 AND round = $3`, year, exam, round,
	).Scan(&e.ID, &e.Year, &e.Exam, &e.Round, &official, &e.AnswerOfficialOpenedAt,
		&e.PredictClosedAt, &participants, &statistics, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalInto(official, &e.AnswerOfficial); err != nil {
		return nil, fmt.Errorf("decode answer_official: %w", err)
	}
	if err := unmarshalInto(participants, &e.Participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	if err := unmarshalInto(statistics, &e.Statistics); err != nil {
		return nil, fmt.Errorf("decode statistics: %w", err)
	}
	return e, nil
}

// GetByID retrieves one exam offering by primary key.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	var official, participants, statistics []byte

	err := r.pool.QueryRow(ctx,
		`SELECT id, year, exam, round, answer_official, answer_official_opened_at,
		        predict_closed_at, participants, statistics, created_at, updated_at
		 FROM exams
		 WHERE id = $1`, id,
	).Scan(&e.ID, &e.Year, &e.Exam, &e.Round, &official, &e.AnswerOfficialOpenedAt,
		&e.PredictClosedAt, &participants, &statistics, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalInto(official, &e.AnswerOfficial); err != nil {
		return nil, fmt.Errorf("decode answer_official: %w", err)
	}
	if err := unmarshalInto(participants, &e.Participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	if err := unmarshalInto(statistics, &e.Statistics); err != nil {
		return nil, fmt.Errorf("decode statistics: %w", err)
	}
	return e, nil
}

// Create inserts a new exam offering with empty aggregates.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (year, exam, round)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		e.Year, e.Exam, e.Round,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// SetAnswerOfficial registers the official answer key and its publication
// time for an offering.
func (r *ExamRepository) SetAnswerOfficial(ctx context.Context, e *model.Exam, key predict.AnswerKey, openedAt time.Time) error {
	raw, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encode answer_official: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE exams
		 SET answer_official = $1, answer_official_opened_at = $2, updated_at = NOW()
		 WHERE id = $3`,
		raw, openedAt, e.ID)
	if err != nil {
		return err
	}

	e.AnswerOfficial = key
	e.AnswerOfficialOpenedAt = &openedAt
	return nil
}

// UpdateAggregates persists recomputed participants and statistics in one
// statement (its own transaction).
func (r *ExamRepository) UpdateAggregates(ctx context.Context, e *model.Exam, participants predict.Participants, statistics predict.Statistics) error {
	rawParticipants, err := json.Marshal(participants)
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}
	rawStatistics, err := json.Marshal(statistics)
	if err != nil {
		return fmt.Errorf("encode statistics: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE exams
		 SET participants = $1, statistics = $2, updated_at = NOW()
		 WHERE id = $3`,
		rawParticipants, rawStatistics, e.ID)
	if err != nil {
		return err
	}

	e.Participants = participants
	e.Statistics = statistics
	return nil
}

// unmarshalInto decodes a nullable JSONB column, leaving the target zeroed
// for NULL or empty payloads.
func unmarshalInto(raw []byte, target any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, target)
}
