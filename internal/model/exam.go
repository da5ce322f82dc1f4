package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/kpredict/predict-backend/internal/predict"
)

// Exam represents one exam offering (family + year + round) with its official
// answer key and the aggregates the prediction pipeline maintains.
type Exam struct {
	ID    uuid.UUID `json:"id"`
	Year  int       `json:"year"`
	Exam  string    `json:"exam"`
	Round int       `json:"round"`

	// AnswerOfficial is empty until an administrator registers the key.
	AnswerOfficial         predict.AnswerKey `json:"answer_official,omitempty"`
	AnswerOfficialOpenedAt *time.Time        `json:"answer_official_opened_at,omitempty"`

	// PredictClosedAt ends the submission window for this offering.
	PredictClosedAt *time.Time `json:"predict_closed_at,omitempty"`

	Participants predict.Participants `json:"participants,omitempty"`
	Statistics   predict.Statistics   `json:"statistics,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KeyUploaded reports whether the official answer key has been registered.
func (e *Exam) KeyUploaded() bool {
	return len(e.AnswerOfficial) > 0 && e.AnswerOfficialOpenedAt != nil
}

// CreateExamRequest is the payload for registering a new exam offering.
type CreateExamRequest struct {
	Year  int    `json:"year" binding:"required,min=2000,max=2100"`
	Exam  string `json:"exam" binding:"required,oneof=haengsi chilgeup gyeongwi prime"`
	Round int    `json:"round" binding:"min=0,max=20"`
}

// UploadAnswerKeyRequest registers the official answer key for an offering.
// Each subject maps to its ordered official answers; values above 5 encode
// several accepted choices as decimal digits.
type UploadAnswerKeyRequest struct {
	AnswerOfficial map[string][]int `json:"answer_official" binding:"required"`
	OpenedAt       *time.Time       `json:"opened_at"`
}
