package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/todo-planner/internal/services"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgTodoNotFound       = "Todo not found"
)

// apiError is written as {"message": ..., "error": ...}.
type apiError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Detail  string `json:"error,omitempty"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func (e apiError) withDetail(detail string) apiError {
	e.Detail = detail
	return e
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, err)
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newInternalError(message string) apiError {
	return newAPIError(http.StatusInternalServerError, message)
}

// fromServiceError maps the service error taxonomy onto a response.
// fallback is the message used for store failures.
func fromServiceError(err error, fallback string) apiError {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return newBadRequestError(verr.Message)
	}

	if errors.Is(err, services.ErrTaskNotFound) {
		return newNotFoundError(msgTodoNotFound)
	}

	detail := err.Error()
	var serr *services.StoreError
	if errors.As(err, &serr) {
		detail = serr.Err.Error()
	}
	return newInternalError(fallback).withDetail(detail)
}
