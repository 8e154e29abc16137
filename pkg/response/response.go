package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error taxonomy. Client errors are surfaced verbatim; server and unknown
// errors carry a generic name and message while the detail is logged
// server-side.
const (
	TypeClientError  = "ClientError"
	TypeServerError  = "ServerError"
	TypeUnknownError = "UnknownError"
)

// Success is the envelope for every successful response.
type Success struct {
	Name    string      `json:"name"`
	Message string      `json:"message"`
	Payload interface{} `json:"payload"`
}

// AppError is the envelope for every failed response. It implements error so
// domain operations can return it directly.
type AppError struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Message string `json:"message"`

	status int
}

func (e *AppError) Error() string {
	return e.Name + ": " + e.Message
}

// Status returns the HTTP status the error maps to.
func (e *AppError) Status() int {
	if e.status != 0 {
		return e.status
	}
	switch e.Type {
	case TypeClientError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewClientError creates a 400 client error.
func NewClientError(name, message string) *AppError {
	return &AppError{Type: TypeClientError, Name: name, Message: message}
}

// NewAuthError creates a client error that maps to 401.
func NewAuthError(name, message string) *AppError {
	return &AppError{Type: TypeClientError, Name: name, Message: message, status: http.StatusUnauthorized}
}

// NewServerError creates a 500 server error.
func NewServerError(name, message string) *AppError {
	return &AppError{Type: TypeServerError, Name: name, Message: message}
}

// OK sends a 200 success envelope.
func OK(c *gin.Context, name, message string, payload interface{}) {
	c.JSON(http.StatusOK, Success{Name: name, Message: message, Payload: payload})
}

// Created sends a 201 success envelope.
func Created(c *gin.Context, name, message string, payload interface{}) {
	c.JSON(http.StatusCreated, Success{Name: name, Message: message, Payload: payload})
}

// Fail writes an error envelope. Known *AppError values keep their name and
// status; anything else becomes an opaque UnknownError so internal detail
// never leaks to the caller.
func Fail(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status(), appErr)
		return
	}
	c.JSON(http.StatusInternalServerError, &AppError{
		Type:    TypeUnknownError,
		Name:    "UnknownError",
		Message: "An unexpected error occurred",
	})
}
