package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/kpredict/predict-backend/internal/predict"
)

// Student is one registration for an exam offering: identity plus the
// per-subject answer sheets and the rank nest the pipeline maintains.
type Student struct {
	ID     int64     `json:"id"`
	ExamID uuid.UUID `json:"exam_id"`

	Name       string `json:"name"`
	Serial     string `json:"serial"`
	Unit       string `json:"unit"`
	Department string `json:"department"`

	PasswordHash string `json:"-"`

	// Sheets is keyed by score field and persisted as JSONB; the composite
	// field's sheet is engine-owned.
	Sheets map[string]*predict.AnswerSheet `json:"sheets"`

	AllConfirmedAt *time.Time   `json:"all_confirmed_at,omitempty"`
	Rank           predict.Rank `json:"rank"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record adapts the student into the engine's view. The sheet map is shared,
// so score mutations flow back; Rank is a value and must be copied back by
// the caller for changed records.
func (s *Student) Record() *predict.StudentRecord {
	if s.Sheets == nil {
		s.Sheets = make(map[string]*predict.AnswerSheet)
	}
	return &predict.StudentRecord{
		ID:             s.ID,
		Name:           s.Name,
		Serial:         s.Serial,
		Department:     s.Department,
		Sheets:         s.Sheets,
		AllConfirmedAt: s.AllConfirmedAt,
		Rank:           s.Rank,
	}
}

// RegisterStudentRequest is the payload for registering into an offering.
type RegisterStudentRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Serial     string `json:"serial" binding:"required,min=1,max=20"`
	Unit       string `json:"unit" binding:"required,min=1,max=50"`
	Department string `json:"department" binding:"required,min=1,max=50"`
	Password   string `json:"password" binding:"required,min=4,max=128"`
	// Selection picks the selective subject on police offerings.
	Selection string `json:"selection" binding:"omitempty,oneof=minbeob haenghag haengbeob"`
}

// StudentLoginRequest authenticates a registered student.
type StudentLoginRequest struct {
	Serial   string `json:"serial" binding:"required,min=1,max=20"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// SubmitAnswersRequest carries one subject's raw answers. Zeroes mean
// "no answer yet"; the sheet confirms only when every slot is non-zero.
type SubmitAnswersRequest struct {
	Subject string `json:"subject" binding:"required,min=2,max=20"`
	Answers []int  `json:"answers" binding:"required,min=1,dive,min=0,max=99"`
}
