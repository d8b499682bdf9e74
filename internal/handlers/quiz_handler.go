package handlers

import (
	"iquiz-service/internal/middleware"
	"iquiz-service/internal/models"
	"iquiz-service/internal/service"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	Service *service.QuizService
}

func NewQuizHandler(s *service.QuizService) *QuizHandler {
	return &QuizHandler{Service: s}
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var input service.CreateQuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	quiz, err := h.Service.CreateQuiz(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondCreated(c, "quiz created", quiz)
}

// ListMyQuizzes serves GET /api/quizzes/:status where status is one of
// draft, upcoming, active, past.
func (h *QuizHandler) ListMyQuizzes(c *gin.Context) {
	status := models.QuizStatus(c.Param("status"))
	quizzes, err := h.Service.GetMyQuizzes(c.Request.Context(), middleware.UserID(c), status)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "quizzes", quizzes)
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.Service.GetQuiz(c.Request.Context(), middleware.UserID(c), c.Param("quizId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "quiz", quiz)
}

func (h *QuizHandler) GetQuizWithQuestions(c *gin.Context) {
	quiz, err := h.Service.GetQuizWithQuestions(c.Request.Context(), middleware.UserID(c), c.Param("quizId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "quiz questions", quiz)
}

func (h *QuizHandler) ReleaseQuiz(c *gin.Context) {
	var input struct {
		StartTime int64 `json:"startTime"`
		EndTime   int64 `json:"endTime"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	quiz, err := h.Service.ReleaseQuiz(c.Request.Context(), middleware.UserID(c), c.Param("quizId"), input.StartTime, input.EndTime)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "quiz released", quiz)
}

// BasicUpdateQuiz changes name and window only.
func (h *QuizHandler) BasicUpdateQuiz(c *gin.Context) {
	var input struct {
		QuizName  string `json:"quizName"`
		StartTime int64  `json:"startTime"`
		EndTime   int64  `json:"endTime"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	err := h.Service.BasicUpdateQuiz(c.Request.Context(), middleware.UserID(c), c.Param("quizId"), input.QuizName, input.StartTime, input.EndTime)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "quiz updated", nil)
}

// UpdateQuiz replaces the question set wholesale.
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var input service.UpdateQuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	input.QuizID = c.Param("quizId")

	if err := h.Service.UpdateQuiz(c.Request.Context(), middleware.UserID(c), input); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "quiz updated", nil)
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	err := h.Service.DeleteDraftQuiz(c.Request.Context(), middleware.UserID(c), c.Param("quizId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "quiz deleted", nil)
}

func (h *QuizHandler) ReleaseGrades(c *gin.Context) {
	err := h.Service.ReleaseQuizGrades(c.Request.Context(), middleware.UserID(c), c.Param("quizId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "grades released", nil)
}
