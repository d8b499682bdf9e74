package handlers

import (
	"iquiz-service/internal/middleware"
	"iquiz-service/internal/service"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	Service *service.CourseService
}

func NewCourseHandler(s *service.CourseService) *CourseHandler {
	return &CourseHandler{Service: s}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var input service.CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	course, err := h.Service.CreateCourse(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondCreated(c, "course created", course)
}

func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	courses, err := h.Service.CoursesForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "courses", courses)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.Service.GetCourse(c.Request.Context(), middleware.UserID(c), c.Param("courseId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "course", course)
}

func (h *CourseHandler) Enroll(c *gin.Context) {
	var input struct {
		SessionIndex int    `json:"sessionIndex"`
		AccentColor  string `json:"accentColor"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	err := h.Service.Enroll(c.Request.Context(), middleware.UserID(c), c.Param("courseId"), input.SessionIndex, input.AccentColor)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "enrolled", nil)
}

func (h *CourseHandler) Drop(c *gin.Context) {
	err := h.Service.Drop(c.Request.Context(), middleware.UserID(c), c.Param("courseId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "dropped", nil)
}

func (h *CourseHandler) Archive(c *gin.Context) {
	err := h.Service.Archive(c.Request.Context(), middleware.UserID(c), c.Param("courseId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "course archived", nil)
}
