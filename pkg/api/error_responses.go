/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: error_responses.go
Description: Standardized JSON error bodies for the HTTP API.
*/

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	berrors "github.com/kleascm/bletchley/pkg/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeKeySpaceTooLarge ErrorCode = "KEYSPACE_TOO_LARGE"
	ErrorCodeUnknownCipher    ErrorCode = "UNKNOWN_CIPHER"

	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeSearchFailed  ErrorCode = "SEARCH_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	resp := &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
		RequestID: c.GetString(requestIDKey),
	}
	c.AbortWithStatusJSON(statusCode, resp)
}

// SendConfigError maps a ConfigError onto a field-level validation failure
func SendConfigError(c *gin.Context, cfgErr *berrors.ConfigError) {
	detail := ErrorDetail{Field: cfgErr.Field, Message: cfgErr.Message, Code: "INVALID_VALUE"}
	if cfgErr.Hint != "" {
		detail.Message = fmt.Sprintf("%s (%s)", cfgErr.Message, cfgErr.Hint)
	}
	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", detail)
}

// SendSearchError picks the response for an error returned by a search
func SendSearchError(c *gin.Context, err error) {
	var cfgErr *berrors.ConfigError
	if errors.As(err, &cfgErr) {
		SendConfigError(c, cfgErr)
		return
	}
	SendError(c, http.StatusInternalServerError, ErrorCodeSearchFailed, err.Error())
}
