// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Every error response carries one of these stable, snake_case codes next to
// its HTTP status so clients can branch on the code instead of the message.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_ready",
//	  "message": "female is not ready: 1 day(s) remaining."
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rabbitry/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeInvalidCage      = "invalid_cage"
	ErrCodeInvalidGender    = "invalid_gender"
	ErrCodeEmptyName        = "empty_name"
	ErrCodeCageEmpty        = "cage_empty"
	ErrCodeSameGender       = "same_gender"
	ErrCodeNotFemale        = "not_female"
	ErrCodeNotReady         = "not_ready"
	ErrCodeConcurrentUpdate = "concurrent_update"
)

// serviceError maps a service error onto a status and code and aborts.
// Anything unrecognized is a store fault: the detail goes to the log and the
// client gets a generic 500.
func serviceError(c *gin.Context, err error) {
	var nr *services.NotReadyError
	switch {
	case errors.As(err, &nr):
		fail(c, http.StatusConflict, ErrCodeNotReady, nr.Error())
	case errors.Is(err, services.ErrInvalidCage):
		fail(c, http.StatusBadRequest, ErrCodeInvalidCage, err.Error())
	case errors.Is(err, services.ErrInvalidGender):
		fail(c, http.StatusBadRequest, ErrCodeInvalidGender, err.Error())
	case errors.Is(err, services.ErrEmptyName):
		fail(c, http.StatusBadRequest, ErrCodeEmptyName, err.Error())
	case errors.Is(err, services.ErrCageEmpty):
		fail(c, http.StatusNotFound, ErrCodeCageEmpty, err.Error())
	case errors.Is(err, services.ErrChatNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrSameGender):
		fail(c, http.StatusUnprocessableEntity, ErrCodeSameGender, err.Error())
	case errors.Is(err, services.ErrNotFemale):
		fail(c, http.StatusConflict, ErrCodeNotFemale, err.Error())
	case errors.Is(err, services.ErrConcurrentUpdate):
		fail(c, http.StatusConflict, ErrCodeConcurrentUpdate, err.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "something went wrong, please try again")
	}
}
