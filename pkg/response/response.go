package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinlix/service-booking/pkg/domain"
)

// Envelope is the uniform JSON response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries a machine-readable code and a human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PaginatedData wraps a page of items with pagination metadata.
type PaginatedData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 with a page of items.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    PaginatedData{Items: items, Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 with a validation error body.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: domain.CodeValidation, Message: message},
	})
}

// Error translates a domain error into an HTTP response. Unknown errors
// become opaque 500s.
func Error(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, Envelope{
			Success: false,
			Error:   &ErrorBody{Code: domain.CodePersistence, Message: "internal server error"},
		})
		return
	}

	c.JSON(statusFor(de.Code), Envelope{
		Success: false,
		Error:   &ErrorBody{Code: de.Code, Message: de.Message},
	})
}

func statusFor(code string) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeRefundFailed:
		return http.StatusBadGateway
	case domain.CodePersistence:
		return http.StatusInternalServerError
	case domain.CodeValidation, domain.CodeInvalidTransition, domain.CodePrematureStart,
		domain.CodeMissingReason, domain.CodeAlreadyTerminal, domain.CodeInvalidAddon,
		domain.CodeInvalidAddress, domain.CodeProviderUnavailable:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
