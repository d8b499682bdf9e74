package handlers

import (
	"net/http"

	"iquiz-service/internal/httperr"

	"github.com/gin-gonic/gin"
)

// Every endpoint answers with the same envelope so the frontend can treat
// responses uniformly: {success, message, payload} on the happy path,
// {success, message, error} otherwise.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, message string, payload any) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Payload: payload})
}

func respondCreated(c *gin.Context, message string, payload any) {
	c.JSON(http.StatusCreated, envelope{Success: true, Message: message, Payload: payload})
}

func respondErr(c *gin.Context, err error) {
	c.JSON(httperr.StatusOf(err), envelope{
		Success: false,
		Message: err.Error(),
		Error:   err.Error(),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Message: message, Error: message})
}
