package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Makepad-fr/tada/internal/service"
)

// ErrorCode is the machine-readable part of an error response.
type ErrorCode string

const (
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// Reasons refine ErrCodeValidation so clients can tell validation
// failures apart.
const (
	ReasonEmptyBody     = "empty_body"
	ReasonBodyTooLong   = "body_too_long"
	ReasonInvalidStatus = "invalid_status"
)

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Reason  string    `json:"reason,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// DataResponse wraps every successful payload.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

func respondData[T any](c *gin.Context, status int, data T) {
	c.JSON(status, DataResponse[T]{Data: data})
}

func respondError(c *gin.Context, status int, code ErrorCode, message string) {
	respondErrorBody(c, status, ErrorBody{Code: code, Message: message})
}

func respondErrorBody(c *gin.Context, status int, body ErrorBody) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}

// respondServiceError maps service sentinels to HTTP statuses. Anything
// unrecognized is a 500 and is attached to the gin context for logging.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyBody):
		respondValidation(c, ReasonEmptyBody, err)
	case errors.Is(err, service.ErrBodyTooLong):
		respondValidation(c, ReasonBodyTooLong, err)
	case errors.Is(err, service.ErrInvalidStatus):
		respondValidation(c, ReasonInvalidStatus, err)
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

func respondValidation(c *gin.Context, reason string, err error) {
	respondErrorBody(c, http.StatusBadRequest, ErrorBody{
		Code:    ErrCodeValidation,
		Message: err.Error(),
		Reason:  reason,
	})
}
