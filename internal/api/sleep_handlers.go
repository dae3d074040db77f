package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepcycle/internal/auth"
	"github.com/yourname/sleepcycle/internal/service"
)

func ListSleepLogs(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := auth.SessionFromContext(c)

		logs, err := app.SleepLogs().ListSleepLogs(c.Request.Context(), session.UserID)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to fetch sleep logs")
			return
		}
		HandleSuccess(c, http.StatusOK, logs, nil)
	}
}

func CreateSleepLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := auth.SessionFromContext(c)

		var body service.CreateLogRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}

		entry, err := service.CreateSleepLog(c.Request.Context(), app.SleepLogs(), session, &body)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to save sleep log")
			return
		}
		HandleSuccess(c, http.StatusCreated, entry, nil)
	}
}

func UpdateSleepLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := auth.SessionFromContext(c)
		id := c.Param("id")

		var body service.UpdateLogRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := service.ValidateUpdateLogRequest(&body); err != nil {
			HandleDomainError(c, app.Logger(), err, "Validation failed")
			return
		}

		entry, err := app.SleepLogs().UpdateSleepLogHours(c.Request.Context(), session.UserID, id, body.Hours)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Sleep log not found")
			return
		}
		HandleSuccess(c, http.StatusOK, entry, nil)
	}
}

func DeleteSleepLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := auth.SessionFromContext(c)
		id := c.Param("id")

		if err := app.SleepLogs().DeleteSleepLog(c.Request.Context(), session.UserID, id); err != nil {
			HandleDomainError(c, app.Logger(), err, "Sleep log not found")
			return
		}
		HandleSuccess(c, http.StatusOK, nil, map[string]any{"deleted": id})
	}
}

func DeleteAllSleepLogs(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := auth.SessionFromContext(c)

		n, err := app.SleepLogs().DeleteAllSleepLogs(c.Request.Context(), session.UserID)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to clear sleep logs")
			return
		}
		HandleSuccess(c, http.StatusOK, nil, map[string]any{"cleared": n})
	}
}
