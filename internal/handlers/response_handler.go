package handlers

import (
	"iquiz-service/internal/middleware"
	"iquiz-service/internal/models"
	"iquiz-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	Service *service.ResponseService
}

func NewResponseHandler(s *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{Service: s}
}

// StartResponse opens (or resumes) the caller's attempt at a quiz.
func (h *ResponseHandler) StartResponse(c *gin.Context) {
	resp, err := h.Service.StartResponse(c.Request.Context(), middleware.UserID(c), c.Param("quizId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "response", resp)
}

func (h *ResponseHandler) SaveResponse(c *gin.Context) {
	var input struct {
		QuestionResponses []models.QuestionResponse `json:"questionResponses"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	resp, err := h.Service.SaveResponse(c.Request.Context(), middleware.UserID(c), c.Param("quizId"), input.QuestionResponses)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "response saved", resp)
}

func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	resp, err := h.Service.SubmitResponse(c.Request.Context(), middleware.UserID(c), c.Param("quizId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "response submitted", resp)
}

// ListResponses is the instructor's grading view of every attempt.
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	responses, err := h.Service.ListResponses(c.Request.Context(), middleware.UserID(c), c.Param("quizId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "responses", responses)
}

func (h *ResponseHandler) GradeResponse(c *gin.Context) {
	var input service.GradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	input.QuizID = c.Param("quizId")

	resp, err := h.Service.GradeResponse(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "response graded", resp)
}

// GetMyResult returns the caller's graded attempt once grades are out.
func (h *ResponseHandler) GetMyResult(c *gin.Context) {
	resp, err := h.Service.GetMyResult(c.Request.Context(), middleware.UserID(c), c.Param("quizId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "result", resp)
}
