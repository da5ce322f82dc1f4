package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/kpredict/predict-backend/internal/predict"
)

// AnswerCount is the persisted answer-choice distribution for one problem of
// one offering. The flat counts cover the whole population; ByCategory nests
// the population-bucket × rank-tier split as JSONB.
type AnswerCount struct {
	ID      int64     `json:"id"`
	ExamID  uuid.UUID `json:"exam_id"`
	Subject string    `json:"subject"`
	Number  int       `json:"number"`

	predict.CountVector

	// ByCategory: "all"/"filtered" → rank tier → count vector.
	ByCategory map[string]map[string]predict.CountVector `json:"by_category,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
