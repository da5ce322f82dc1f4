package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kpredict/predict-backend/internal/config"
	"github.com/kpredict/predict-backend/internal/model"
	"github.com/kpredict/predict-backend/internal/predict"
	"github.com/kpredict/predict-backend/internal/profile"
	"github.com/kpredict/predict-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Common prediction errors.
var (
	ErrAnswerKeyMissing  = errors.New("official answer key not uploaded")
	ErrUnknownSubject    = errors.New("subject not scored by this offering")
	ErrAnswerCountLength = errors.New("answer count does not match problem count")
)

// RecomputeRequest identifies the offering a queued recompute targets.
type RecomputeRequest struct {
	Year  int    `json:"year"`
	Exam  string `json:"exam"`
	Round int    `json:"round"`
}

// ProgressEvent is published to Redis PubSub at each recompute stage so
// monitoring clients can follow a run.
type ProgressEvent struct {
	Stage        string `json:"stage"`
	Year         int    `json:"year"`
	Exam         string `json:"exam"`
	Round        int    `json:"round"`
	Students     int    `json:"students,omitempty"`
	ScoreUpdates int    `json:"score_updates,omitempty"`
	RankUpdates  int    `json:"rank_updates,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// StatisticsPayload is the cached aggregate view served to clients.
type StatisticsPayload struct {
	Year         int                  `json:"year"`
	Exam         string               `json:"exam"`
	Round        int                  `json:"round"`
	Participants predict.Participants `json:"participants"`
	Statistics   predict.Statistics   `json:"statistics"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// PredictService orchestrates offerings, answer keys and the full statistics
// recompute.
type PredictService struct {
	cfg *config.Config
	rdb *redis.Client
	log zerolog.Logger

	examRepo        *repository.ExamRepository
	studentRepo     *repository.StudentRepository
	departmentRepo  *repository.DepartmentRepository
	answerCountRepo *repository.AnswerCountRepository
}

// NewPredictService creates a new PredictService.
func NewPredictService(
	cfg *config.Config,
	rdb *redis.Client,
	log zerolog.Logger,
	examRepo *repository.ExamRepository,
	studentRepo *repository.StudentRepository,
	departmentRepo *repository.DepartmentRepository,
	answerCountRepo *repository.AnswerCountRepository,
) *PredictService {
	return &PredictService{
		cfg:             cfg,
		rdb:             rdb,
		log:             log.With().Str("component", "predict_service").Logger(),
		examRepo:        examRepo,
		studentRepo:     studentRepo,
		departmentRepo:  departmentRepo,
		answerCountRepo: answerCountRepo,
	}
}

// CreateExam registers a new offering after checking the family is known.
func (s *PredictService) CreateExam(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	if _, err := profile.New(req.Exam, req.Year, req.Round); err != nil {
		return nil, err
	}

	e := &model.Exam{Year: req.Year, Exam: req.Exam, Round: req.Round}
	if err := s.examRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetExam retrieves one offering by its natural key.
func (s *PredictService) GetExam(ctx context.Context, year int, exam string, round int) (*model.Exam, error) {
	return s.examRepo.GetByOffering(ctx, year, exam, round)
}

// UploadAnswerKey registers the official key, caches it and queues a full
// recompute. Unknown subjects and wrong-length lists are rejected up front;
// beyond that the scorer revalidates per run.
func (s *PredictService) UploadAnswerKey(ctx context.Context, year int, exam string, round int, req *model.UploadAnswerKeyRequest) (*model.Exam, error) {
	e, err := s.examRepo.GetByOffering(ctx, year, exam, round)
	if err != nil {
		return nil, err
	}

	key := predict.AnswerKey(req.AnswerOfficial)
	for subject, answers := range key {
		count, ok := subjectProblemCount(e, subject)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSubject, subject)
		}
		if len(answers) != count {
			return nil, fmt.Errorf("%w: %q has %d answers, want %d",
				ErrAnswerCountLength, subject, len(answers), count)
		}
	}

	openedAt := time.Now()
	if req.OpenedAt != nil {
		openedAt = *req.OpenedAt
	}

	if err := s.examRepo.SetAnswerOfficial(ctx, e, key, openedAt); err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(key); err == nil {
		cacheKey := config.CacheKey.ExamAnswerOfficialKey(year, exam, round)
		if err := s.rdb.Set(ctx, cacheKey, raw, 0).Err(); err != nil {
			s.log.Warn().Err(err).Msg("cache official answer key failed")
		}
	}

	if err := s.EnqueueRecompute(ctx, year, exam, round); err != nil {
		s.log.Error().Err(err).Msg("enqueue recompute after key upload failed")
	}
	return e, nil
}

// EnqueueRecompute pushes a recompute request onto the worker queue.
func (s *PredictService) EnqueueRecompute(ctx context.Context, year int, exam string, round int) error {
	raw, err := json.Marshal(RecomputeRequest{Year: year, Exam: exam, Round: round})
	if err != nil {
		return err
	}
	return s.rdb.RPush(ctx, config.WorkerKey.RecomputeStatisticsQueue, raw).Err()
}

// UpdateStatistics runs the full recompute for one offering: score every
// sheet, assign ranks, rebuild statistics and answer distributions, and
// persist each aggregate in its own statement. A failed write-back is logged
// and the run continues; missing configuration aborts before any data is
// touched.
func (s *PredictService) UpdateStatistics(ctx context.Context, year int, exam string, round int) error {
	e, err := s.examRepo.GetByOffering(ctx, year, exam, round)
	if err != nil {
		return fmt.Errorf("load exam: %w", err)
	}
	if !e.KeyUploaded() {
		return ErrAnswerKeyMissing
	}

	aggProfile, err := profile.ForStatistics(e.Exam, e.Year, e.Round)
	if err != nil {
		return fmt.Errorf("build profile: %w", err)
	}

	students, err := s.studentRepo.ListByExam(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("load students: %w", err)
	}
	departments, err := s.departmentRepo.NamesByExam(ctx, e.Exam)
	if err != nil {
		return fmt.Errorf("load departments: %w", err)
	}

	s.publishProgress(ctx, e, &ProgressEvent{Stage: "started", Students: len(students)})

	groups, byID, err := s.buildGroups(e, students)
	if err != nil {
		return err
	}

	pipe := predict.NewPipeline(aggProfile, s.log)
	result := pipe.RunGrouped(groups, e.AnswerOfficial, *e.AnswerOfficialOpenedAt, departments)

	s.publishProgress(ctx, e, &ProgressEvent{
		Stage:        "computed",
		Students:     len(students),
		ScoreUpdates: result.Scored.UpdateCount,
		RankUpdates:  result.Ranked.UpdateCount,
	})

	// Write-backs. Each statement is its own transaction; a failure is
	// logged as a transaction error and the remaining writes still run, so
	// one bad batch cannot wedge the whole offering.
	changed := changedStudents(result, byID)
	if err := s.studentRepo.BulkUpdateResults(ctx, changed); err != nil {
		s.log.Error().Err(err).Int("students", len(changed)).Msg("transaction error: bulk student update")
	}
	if err := s.examRepo.UpdateAggregates(ctx, e, result.Participants, result.Statistics); err != nil {
		s.log.Error().Err(err).Msg("transaction error: exam aggregates update")
	}
	if err := s.answerCountRepo.UpsertBatch(ctx, e.ID, result.AnswerCounts, result.AnswerCountsByCategory); err != nil {
		s.log.Error().Err(err).Msg("transaction error: answer count upsert")
	}

	s.cacheStatistics(ctx, e, result)

	s.publishProgress(ctx, e, &ProgressEvent{
		Stage:        "complete",
		Students:     len(students),
		ScoreUpdates: result.Scored.UpdateCount,
		RankUpdates:  result.Ranked.UpdateCount,
	})

	s.log.Info().
		Int("year", year).Str("exam", exam).Int("round", round).
		Int("students", len(students)).
		Int("updated", len(changed)).
		Msg("statistics recompute finished")
	return nil
}

// buildGroups slices the roster into scoring groups and returns an ID index
// for copying ranks back after the run. PSAT offerings form one group; police
// offerings one group per selective subject.
func (s *PredictService) buildGroups(e *model.Exam, students []*model.Student) ([]predict.Group, map[int64]*model.Student, error) {
	byID := make(map[int64]*model.Student, len(students))

	if e.Exam != profile.ExamGyeongwi {
		prof, err := profile.New(e.Exam, e.Year, e.Round)
		if err != nil {
			return nil, nil, fmt.Errorf("build profile: %w", err)
		}
		records := make([]*predict.StudentRecord, 0, len(students))
		for _, st := range students {
			byID[st.ID] = st
			records = append(records, st.Record())
		}
		return []predict.Group{{Profile: prof, Students: records}}, byID, nil
	}

	bySelection := make(map[string][]*predict.StudentRecord)
	for _, st := range students {
		byID[st.ID] = st
		bySelection[studentSelection(st)] = append(bySelection[studentSelection(st)], st.Record())
	}

	groups := make([]predict.Group, 0, len(bySelection))
	for _, selection := range profile.Selections() {
		records, ok := bySelection[selection]
		if !ok {
			continue
		}
		prof, err := profile.NewWithSelection(e.Exam, e.Year, e.Round, selection)
		if err != nil {
			return nil, nil, fmt.Errorf("build profile: %w", err)
		}
		groups = append(groups, predict.Group{Profile: prof, Students: records})
	}
	return groups, byID, nil
}

// changedStudents merges the score and rank changesets into one distinct
// model batch, copying recomputed ranks back onto the models.
func changedStudents(result *predict.Result, byID map[int64]*model.Student) []*model.Student {
	seen := make(map[int64]bool)
	var changed []*model.Student

	collect := func(records []*predict.StudentRecord) {
		for _, rec := range records {
			st, ok := byID[rec.ID]
			if !ok || seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			st.Rank = rec.Rank
			changed = append(changed, st)
		}
	}
	collect(result.Scored.UpdateList)
	collect(result.Ranked.UpdateList)
	return changed
}

// GetStatistics serves the cached aggregate view, falling back to the stored
// exam row on a cache miss.
func (s *PredictService) GetStatistics(ctx context.Context, year int, exam string, round int) (*StatisticsPayload, error) {
	cacheKey := config.CacheKey.ExamStatisticsKey(year, exam, round)

	if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		payload := &StatisticsPayload{}
		if err := json.Unmarshal(raw, payload); err == nil {
			return payload, nil
		}
	}

	e, err := s.examRepo.GetByOffering(ctx, year, exam, round)
	if err != nil {
		return nil, err
	}
	if !e.KeyUploaded() {
		return nil, ErrAnswerKeyMissing
	}

	payload := &StatisticsPayload{
		Year:         e.Year,
		Exam:         e.Exam,
		Round:        e.Round,
		Participants: e.Participants,
		Statistics:   e.Statistics,
		UpdatedAt:    e.UpdatedAt,
	}
	s.cachePayload(ctx, cacheKey, payload)
	return payload, nil
}

// GetAnswerCounts retrieves the persisted answer-choice distributions.
func (s *PredictService) GetAnswerCounts(ctx context.Context, year int, exam string, round int) ([]*model.AnswerCount, error) {
	e, err := s.examRepo.GetByOffering(ctx, year, exam, round)
	if err != nil {
		return nil, err
	}
	return s.answerCountRepo.ListByExam(ctx, e.ID)
}

func (s *PredictService) cacheStatistics(ctx context.Context, e *model.Exam, result *predict.Result) {
	payload := &StatisticsPayload{
		Year:         e.Year,
		Exam:         e.Exam,
		Round:        e.Round,
		Participants: result.Participants,
		Statistics:   result.Statistics,
		UpdatedAt:    time.Now(),
	}
	s.cachePayload(ctx, config.CacheKey.ExamStatisticsKey(e.Year, e.Exam, e.Round), payload)
}

func (s *PredictService) cachePayload(ctx context.Context, key string, payload *StatisticsPayload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.cfg.StatisticsCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache statistics failed")
	}
}

func (s *PredictService) publishProgress(ctx context.Context, e *model.Exam, event *ProgressEvent) {
	event.Year = e.Year
	event.Exam = e.Exam
	event.Round = e.Round
	event.Timestamp = time.Now().UTC().Format(time.RFC3339)

	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	channel := config.CacheKey.RecomputeProgressChannel(e.Year, e.Exam, e.Round)
	if err := s.rdb.Publish(ctx, channel, raw).Err(); err != nil {
		s.log.Warn().Err(err).Msg("publish progress failed")
	}
}

// subjectProblemCount resolves the problem count for a subject across every
// selection variant the offering supports.
func subjectProblemCount(e *model.Exam, subject string) (int, bool) {
	for _, selection := range profile.Selections() {
		p, err := profile.NewWithSelection(e.Exam, e.Year, e.Round, selection)
		if err != nil {
			return 0, false
		}
		if p.HasSubject(subject) {
			return p.ProblemCount(subject), true
		}
		if e.Exam != profile.ExamGyeongwi {
			break
		}
	}
	return 0, false
}

// studentSelection derives which selective subject a police student
// registered with from the sheets seeded at registration.
func studentSelection(st *model.Student) string {
	for _, selection := range profile.Selections() {
		if _, ok := st.Sheets[selection]; ok {
			return selection
		}
	}
	return profile.SubjectMinbeob
}
