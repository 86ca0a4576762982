package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aiResume/internal/errcode"
)

// ErrorResponse is the uniform failure body of every endpoint.
type ErrorResponse struct {
	Success       bool     `json:"success"`
	Error         string   `json:"error"`
	Details       string   `json:"details,omitempty"`
	Code          int      `json:"code"`
	MissingFields []string `json:"missingFields,omitempty"`
}

func Error(c *gin.Context, status, code int, msg string) {
	c.JSON(status, ErrorResponse{Error: msg, Code: code})
}

func ErrorWithDetails(c *gin.Context, status, code int, msg, details string) {
	c.JSON(status, ErrorResponse{Error: msg, Details: details, Code: code})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, errcode.Validation, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, errcode.NotFound, msg) }
func Internal(c *gin.Context, code int, msg string) {
	Error(c, http.StatusInternalServerError, code, msg)
}
