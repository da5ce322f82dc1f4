package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/kpredict/predict-backend/internal/middleware"
	"github.com/kpredict/predict-backend/internal/model"
	"github.com/kpredict/predict-backend/internal/response"
	"github.com/kpredict/predict-backend/internal/service"
	"github.com/kpredict/predict-backend/internal/validator"
)

// StudentHandler handles student registration, login and answer submission.
type StudentHandler struct {
	answerService *service.AnswerService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(answerService *service.AnswerService) *StudentHandler {
	return &StudentHandler{answerService: answerService}
}

func studentView(st *model.Student) gin.H {
	return gin.H{
		"id":               st.ID,
		"exam_id":          st.ExamID,
		"name":             st.Name,
		"serial":           st.Serial,
		"unit":             st.Unit,
		"department":       st.Department,
		"sheets":           st.Sheets,
		"all_confirmed_at": st.AllConfirmedAt,
		"rank":             st.Rank,
	}
}

// Register godoc
// POST /api/v1/predict/:year/:exam/:round/students
func (h *StudentHandler) Register(c *gin.Context) {
	year, exam, round, ok := parseOffering(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	var req model.RegisterStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	st, token, err := h.answerService.Register(c.Request.Context(), year, exam, round, &req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrDuplicateSerial):
			response.Fail(c, http.StatusConflict, response.ErrDuplicateSerial)
		case errors.Is(err, service.ErrPredictClosed):
			response.Fail(c, http.StatusConflict, response.ErrPredictClosed)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"token":   token,
		"student": studentView(st),
	})
}

// Login godoc
// POST /api/v1/predict/:year/:exam/:round/login
func (h *StudentHandler) Login(c *gin.Context) {
	year, exam, round, ok := parseOffering(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	var req model.StudentLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	st, token, err := h.answerService.Login(c.Request.Context(), year, exam, round, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":   token,
		"student": studentView(st),
	})
}

// Submit godoc
// POST /api/v1/student/answers
// Stores one subject's raw answers for the authenticated student.
func (h *StudentHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	st, err := h.answerService.Submit(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownSubject):
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownSubject)
		case errors.Is(err, service.ErrAnswerCountLength):
			response.Fail(c, http.StatusBadRequest, response.ErrAnswerCountLength)
		case errors.Is(err, service.ErrPredictClosed):
			response.Fail(c, http.StatusConflict, response.ErrPredictClosed)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": studentView(st)})
}

// Scorecard godoc
// GET /api/v1/student/scorecard
// Returns the student's sheets, ranks and the offering's aggregates.
func (h *StudentHandler) Scorecard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	st, stats, err := h.answerService.Scorecard(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	body := gin.H{"student": studentView(st)}
	if stats != nil {
		body["statistics"] = stats
	}
	response.Success(c, http.StatusOK, body)
}
