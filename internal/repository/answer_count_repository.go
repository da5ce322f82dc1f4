package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kpredict/predict-backend/internal/model"
	"github.com/kpredict/predict-backend/internal/predict"
)

// AnswerCountRepository persists answer-choice distributions per problem.
type AnswerCountRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerCountRepository creates a new AnswerCountRepository.
func NewAnswerCountRepository(pool *pgxpool.Pool) *AnswerCountRepository {
	return &AnswerCountRepository{pool: pool}
}

// ListByExam retrieves all persisted distributions for one offering, ordered
// by subject and problem number.
func (r *AnswerCountRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]*model.AnswerCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, subject, number, counts, by_category, updated_at
		 FROM answer_counts
		 WHERE exam_id = $1
		 ORDER BY subject, number`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*model.AnswerCount
	for rows.Next() {
		ac := &model.AnswerCount{}
		var counts, byCategory []byte
		if err := rows.Scan(&ac.ID, &ac.ExamID, &ac.Subject, &ac.Number,
			&counts, &byCategory, &ac.UpdatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalInto(counts, &ac.CountVector); err != nil {
			return nil, fmt.Errorf("decode counts: %w", err)
		}
		if err := unmarshalInto(byCategory, &ac.ByCategory); err != nil {
			return nil, fmt.Errorf("decode by_category: %w", err)
		}
		results = append(results, ac)
	}
	return results, rows.Err()
}

// UpsertBatch writes recomputed distributions in one UNNEST-driven statement
// keyed on (exam_id, subject, number). The statement runs in its own implicit
// transaction: all rows or none.
func (r *AnswerCountRepository) UpsertBatch(ctx context.Context, examID uuid.UUID, counts map[string][]predict.CountVector, byCategory map[string]map[string]map[string][]predict.CountVector) error {
	var (
		subjects   []string
		numbers    []int32
		flats      [][]byte
		categories [][]byte
	)

	for subject, vectors := range counts {
		for i, vec := range vectors {
			rawFlat, err := json.Marshal(vec)
			if err != nil {
				return fmt.Errorf("encode counts for %s problem %d: %w", subject, i+1, err)
			}

			// Pivot bucket → tier → subject → vectors into the per-problem
			// bucket → tier shape that gets stored alongside the flat counts.
			perProblem := map[string]map[string]predict.CountVector{}
			for bucket, tiers := range byCategory {
				for tier, subjectVectors := range tiers {
					tierVectors, ok := subjectVectors[subject]
					if !ok || i >= len(tierVectors) {
						continue
					}
					if perProblem[bucket] == nil {
						perProblem[bucket] = map[string]predict.CountVector{}
					}
					perProblem[bucket][tier] = tierVectors[i]
				}
			}
			rawCategory, err := json.Marshal(perProblem)
			if err != nil {
				return fmt.Errorf("encode by_category for %s problem %d: %w", subject, i+1, err)
			}

			subjects = append(subjects, subject)
			numbers = append(numbers, int32(i+1))
			flats = append(flats, rawFlat)
			categories = append(categories, rawCategory)
		}
	}
	if len(subjects) == 0 {
		return nil
	}

	query := `
		INSERT INTO answer_counts (exam_id, subject, number, counts, by_category)
		SELECT $1, u.subject, u.number, u.counts, u.by_category
		FROM UNNEST(
			$2::text[],
			$3::int[],
			$4::jsonb[],
			$5::jsonb[]
		) AS u (subject, number, counts, by_category)
		ON CONFLICT (exam_id, subject, number) DO UPDATE
		SET counts = EXCLUDED.counts,
		    by_category = EXCLUDED.by_category,
		    updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, examID, subjects, numbers, flats, categories)
	return err
}
