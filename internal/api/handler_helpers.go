package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepcycle/internal"
	"github.com/yourname/sleepcycle/internal/response"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case http.StatusBadRequest:
		resp = response.BadRequest(msg + ": " + err.Error())
	case http.StatusUnauthorized:
		resp = response.Unauthorized(msg)
	case http.StatusNotFound:
		resp = response.NotFound(msg)
	case http.StatusTooManyRequests:
		resp = response.RateLimited(msg)
	case http.StatusInternalServerError:
		// Internals stay in the log, not the response.
		resp = response.InternalError(msg)
	default:
		resp = response.NewAppError(status, msg)
	}
	c.JSON(status, resp)
}

// HandleDomainError maps the error taxonomy onto HTTP statuses.
func HandleDomainError(c *gin.Context, logger internal.Logger, err error, msg string) {
	switch {
	case errors.Is(err, internal.ErrInvalidInput):
		HandleError(c, logger, err, http.StatusBadRequest, msg)
	case errors.Is(err, internal.ErrUnauthorized):
		HandleError(c, logger, err, http.StatusUnauthorized, msg)
	case errors.Is(err, internal.ErrNotFound):
		HandleError(c, logger, err, http.StatusNotFound, msg)
	case errors.Is(err, internal.ErrRateLimited):
		HandleError(c, logger, err, http.StatusTooManyRequests, msg)
	default:
		HandleError(c, logger, err, http.StatusInternalServerError, msg)
	}
}

func HandleSuccess(c *gin.Context, status int, data interface{}, meta map[string]any) {
	c.JSON(status, response.Success(data, meta))
}
