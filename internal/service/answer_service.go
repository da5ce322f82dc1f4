package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kpredict/predict-backend/internal/model"
	"github.com/kpredict/predict-backend/internal/predict"
	"github.com/kpredict/predict-backend/internal/profile"
	"github.com/kpredict/predict-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Common answer-submission errors.
var (
	ErrPredictClosed   = errors.New("prediction window closed")
	ErrDuplicateSerial = errors.New("serial already registered")
)

// AnswerService handles student registration and answer submission.
type AnswerService struct {
	log zerolog.Logger

	examRepo    *repository.ExamRepository
	studentRepo *repository.StudentRepository
	auth        *AuthService
	predicts    *PredictService
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(
	log zerolog.Logger,
	examRepo *repository.ExamRepository,
	studentRepo *repository.StudentRepository,
	auth *AuthService,
	predicts *PredictService,
) *AnswerService {
	return &AnswerService{
		log:         log.With().Str("component", "answer_service").Logger(),
		examRepo:    examRepo,
		studentRepo: studentRepo,
		auth:        auth,
		predicts:    predicts,
	}
}

// Register creates a student registration with zero-seeded sheets and returns
// the student plus a login token.
func (s *AnswerService) Register(ctx context.Context, year int, exam string, round int, req *model.RegisterStudentRequest) (*model.Student, string, error) {
	e, err := s.examRepo.GetByOffering(ctx, year, exam, round)
	if err != nil {
		return nil, "", err
	}
	if closedAt := e.PredictClosedAt; closedAt != nil && time.Now().After(*closedAt) {
		return nil, "", ErrPredictClosed
	}

	prof, err := registrationProfile(e, req.Selection)
	if err != nil {
		return nil, "", err
	}

	if _, err := s.studentRepo.GetBySerial(ctx, e.ID, req.Serial); err == nil {
		return nil, "", ErrDuplicateSerial
	} else if !errors.Is(err, pgx.ErrNoRows) && !errors.Is(err, repository.ErrDuplicateStudent) {
		return nil, "", err
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	fields := prof.ScoreFields()
	sheets := make(map[string]*predict.AnswerSheet, len(fields))
	for _, field := range fields {
		sheets[field] = &predict.AnswerSheet{}
	}

	st := &model.Student{
		ExamID:       e.ID,
		Name:         req.Name,
		Serial:       req.Serial,
		Unit:         req.Unit,
		Department:   req.Department,
		PasswordHash: hash,
		Sheets:       sheets,
		Rank:         predict.NewRank(fields),
	}
	if err := s.studentRepo.Create(ctx, st); err != nil {
		return nil, "", err
	}

	token, err := s.auth.GenerateStudentToken(ctx, st.ID, e.ID)
	if err != nil {
		return nil, "", err
	}
	return st, token, nil
}

// Login authenticates a registered student by serial and password.
func (s *AnswerService) Login(ctx context.Context, year int, exam string, round int, req *model.StudentLoginRequest) (*model.Student, string, error) {
	e, err := s.examRepo.GetByOffering(ctx, year, exam, round)
	if err != nil {
		return nil, "", err
	}

	st, err := s.studentRepo.GetBySerial(ctx, e.ID, req.Serial)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, repository.ErrDuplicateStudent) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := s.auth.CheckPassword(st.PasswordHash, req.Password); err != nil {
		return nil, "", err
	}

	token, err := s.auth.GenerateStudentToken(ctx, st.ID, e.ID)
	if err != nil {
		return nil, "", err
	}
	return st, token, nil
}

// Submit stores one subject's raw answers on the student's sheet. The sheet
// confirms only when every slot carries a choice; a resubmission with blanks
// unconfirms it. A recompute is queued once the official key is available.
func (s *AnswerService) Submit(ctx context.Context, studentID int64, req *model.SubmitAnswersRequest) (*model.Student, error) {
	st, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	e, err := s.examRepo.GetByID(ctx, st.ExamID)
	if err != nil {
		return nil, err
	}
	if closedAt := e.PredictClosedAt; closedAt != nil && time.Now().After(*closedAt) {
		return nil, ErrPredictClosed
	}

	prof, err := registrationProfile(e, studentSelection(st))
	if err != nil {
		return nil, err
	}
	if !prof.HasSubject(req.Subject) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubject, req.Subject)
	}
	if want := prof.ProblemCount(req.Subject); len(req.Answers) != want {
		return nil, fmt.Errorf("%w: got %d answers, want %d", ErrAnswerCountLength, len(req.Answers), want)
	}

	sheet := st.Sheets[req.Subject]
	if sheet == nil {
		sheet = &predict.AnswerSheet{}
		if st.Sheets == nil {
			st.Sheets = make(map[string]*predict.AnswerSheet)
		}
		st.Sheets[req.Subject] = sheet
	}

	sheet.Answers = req.Answers
	confirmed := true
	for _, ans := range req.Answers {
		if ans == 0 {
			confirmed = false
			break
		}
	}
	switch {
	case confirmed && !sheet.Confirmed:
		now := time.Now()
		sheet.Confirmed = true
		sheet.ConfirmedAt = &now
	case !confirmed:
		sheet.Confirmed = false
		sheet.ConfirmedAt = nil
	}

	st.AllConfirmedAt = deriveAllConfirmedAt(prof, st.Sheets)

	if err := s.studentRepo.UpdateSheets(ctx, st); err != nil {
		return nil, err
	}

	if e.KeyUploaded() {
		if err := s.predicts.EnqueueRecompute(ctx, e.Year, e.Exam, e.Round); err != nil {
			s.log.Error().Err(err).Int64("student_id", st.ID).Msg("enqueue recompute after submission failed")
		}
	}
	return st, nil
}

// Scorecard returns a student's sheets and ranks together with the offering's
// aggregate statistics for display.
func (s *AnswerService) Scorecard(ctx context.Context, studentID int64) (*model.Student, *StatisticsPayload, error) {
	st, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	e, err := s.examRepo.GetByID(ctx, st.ExamID)
	if err != nil {
		return nil, nil, err
	}

	stats, err := s.predicts.GetStatistics(ctx, e.Year, e.Exam, e.Round)
	if err != nil {
		if errors.Is(err, ErrAnswerKeyMissing) {
			return st, nil, nil
		}
		return nil, nil, err
	}
	return st, stats, nil
}

// registrationProfile builds the profile a student registers and submits
// under, honoring the police selective subject.
func registrationProfile(e *model.Exam, selection string) (*profile.Profile, error) {
	if e.Exam == profile.ExamGyeongwi && selection != "" {
		return profile.NewWithSelection(e.Exam, e.Year, e.Round, selection)
	}
	return profile.New(e.Exam, e.Year, e.Round)
}

// deriveAllConfirmedAt returns the latest subject confirmation time once
// every subject sheet is confirmed, nil otherwise.
func deriveAllConfirmedAt(prof *profile.Profile, sheets map[string]*predict.AnswerSheet) *time.Time {
	var latest *time.Time
	for _, subject := range prof.Subjects {
		sheet, ok := sheets[subject]
		if !ok || !sheet.Confirmed || sheet.ConfirmedAt == nil {
			return nil
		}
		if latest == nil || sheet.ConfirmedAt.After(*latest) {
			latest = sheet.ConfirmedAt
		}
	}
	return latest
}
