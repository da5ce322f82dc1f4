package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/kpredict/predict-backend/internal/model"
	"github.com/kpredict/predict-backend/internal/profile"
	"github.com/kpredict/predict-backend/internal/response"
	"github.com/kpredict/predict-backend/internal/service"
	"github.com/kpredict/predict-backend/internal/validator"
)

// ExamHandler handles exam offering management and aggregate views.
type ExamHandler struct {
	predictService *service.PredictService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(predictService *service.PredictService) *ExamHandler {
	return &ExamHandler{predictService: predictService}
}

// parseOffering extracts the (year, exam, round) natural key from the route.
func parseOffering(c *gin.Context) (int, string, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, "", 0, false
	}
	round, err := strconv.Atoi(c.Param("round"))
	if err != nil {
		return 0, "", 0, false
	}
	return year, c.Param("exam"), round, true
}

// CreateExam godoc
// POST /api/v1/admin/exams
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	e, err := h.predictService.CreateExam(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, profile.ErrUnknownExam) {
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownExam)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"exam": e})
}

// GetExam godoc
// GET /api/v1/predict/:year/:exam/:round
func (h *ExamHandler) GetExam(c *gin.Context) {
	year, exam, round, ok := parseOffering(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	e, err := h.predictService.GetExam(c.Request.Context(), year, exam, round)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	// The raw key stays admin-only until it has been opened.
	view := gin.H{
		"id":                e.ID,
		"year":              e.Year,
		"exam":              e.Exam,
		"round":             e.Round,
		"key_uploaded":      e.KeyUploaded(),
		"predict_closed_at": e.PredictClosedAt,
	}
	if e.KeyUploaded() {
		view["answer_official"] = e.AnswerOfficial
		view["answer_official_opened_at"] = e.AnswerOfficialOpenedAt
	}
	response.Success(c, http.StatusOK, gin.H{"exam": view})
}

// UploadAnswerKey godoc
// POST /api/v1/admin/exams/:year/:exam/:round/answer-key
func (h *ExamHandler) UploadAnswerKey(c *gin.Context) {
	year, exam, round, ok := parseOffering(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	var req model.UploadAnswerKeyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	e, err := h.predictService.UploadAnswerKey(c.Request.Context(), year, exam, round, &req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrUnknownSubject):
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownSubject)
		case errors.Is(err, service.ErrAnswerCountLength):
			response.Fail(c, http.StatusBadRequest, response.ErrAnswerCountLength)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": e})
}

// TriggerRecompute godoc
// POST /api/v1/admin/exams/:year/:exam/:round/recompute
// Queues a full statistics recompute for the worker.
func (h *ExamHandler) TriggerRecompute(c *gin.Context) {
	year, exam, round, ok := parseOffering(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	e, err := h.predictService.GetExam(c.Request.Context(), year, exam, round)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if !e.KeyUploaded() {
		response.Fail(c, http.StatusConflict, response.ErrAnswerKeyMissing)
		return
	}

	if err := h.predictService.EnqueueRecompute(c.Request.Context(), year, exam, round); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"queued": true})
}

// GetStatistics godoc
// GET /api/v1/predict/:year/:exam/:round/statistics
func (h *ExamHandler) GetStatistics(c *gin.Context) {
	year, exam, round, ok := parseOffering(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	payload, err := h.predictService.GetStatistics(c.Request.Context(), year, exam, round)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrAnswerKeyMissing):
			response.Fail(c, http.StatusConflict, response.ErrAnswerKeyMissing)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, payload)
}

// GetAnswerCounts godoc
// GET /api/v1/predict/:year/:exam/:round/answer-counts
func (h *ExamHandler) GetAnswerCounts(c *gin.Context) {
	year, exam, round, ok := parseOffering(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	counts, err := h.predictService.GetAnswerCounts(c.Request.Context(), year, exam, round)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"answer_counts": counts})
}
