package handlers

import (
	"net/http"

	"iquiz-service/internal/config"
	"iquiz-service/internal/middleware"
	"iquiz-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	Service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{Service: s}
}

func (h *UserHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.Service.Register(c.Request.Context(), input)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondCreated(c, "user registered, check your email for a verification code", user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.Service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondErr(c, err)
		return
	}

	token, err := middleware.IssueToken(user)
	if err != nil {
		respondErr(c, err)
		return
	}

	maxAge := int(config.ServiceConfig.JWTExpiryHours) * 3600
	csrfToken := uuid.NewString()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", false, true)
	// CSRF cookie is readable by the frontend, which echoes it in the
	// X-CSRF-Token header on every mutating request.
	c.SetCookie(middleware.CSRFCookie, csrfToken, maxAge, "/", "", false, false)

	respondOK(c, "logged in", gin.H{
		"user":      user,
		"csrfToken": csrfToken,
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.SetCookie(middleware.CSRFCookie, "", -1, "/", "", false, false)
	respondOK(c, "logged out", nil)
}

func (h *UserHandler) VerifyEmail(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := h.Service.VerifyEmail(c.Request.Context(), input.Email, input.Code); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "email verified", nil)
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := h.Service.IssuePasswordResetCode(c.Request.Context(), input.Email); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "if the account exists, a reset code has been sent", nil)
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var input struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := h.Service.ResetPassword(c.Request.Context(), input.Email, input.Code, input.NewPassword); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "password reset", nil)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.Service.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, "user profile", user)
}
