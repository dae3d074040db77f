package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepcycle/internal"
	"github.com/yourname/sleepcycle/internal/auth"
	"github.com/yourname/sleepcycle/internal/metrics"
	"github.com/yourname/sleepcycle/internal/service"
)

// Recommend computes candidate times. It needs no authentication: the math
// is free, only persisting a choice requires an account.
func Recommend(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.RecommendRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}

		rec, err := service.ComputeRecommendations(&body, app.Config().ToddlerMinSleepHours)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to compute recommendations")
			return
		}
		HandleSuccess(c, http.StatusOK, rec, nil)
	}
}

type ConfirmRequest struct {
	service.RecommendRequest
	SelectedTime string `json:"selectedTime" binding:"required"`
}

// ConfirmRecommendation runs the whole flow server-side: recompute the
// candidates, check the selection is one of them, derive the actual slept
// hours, and persist the entry for the session user.
func ConfirmRecommendation(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := auth.SessionFromContext(c)

		var body ConfirmRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}

		flow := service.NewFlow(internal.Mode(body.Mode), app.Config().ToddlerMinSleepHours)
		if err := flow.SetMode(internal.Mode(body.Mode)); err != nil {
			HandleDomainError(c, app.Logger(), err, "Invalid mode")
			return
		}
		if _, err := flow.Compute(body.AnchorTime, body.FallAsleepMinutes, body.Age); err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to compute recommendations")
			return
		}
		if err := flow.Select(body.SelectedTime); err != nil {
			HandleDomainError(c, app.Logger(), err, "Invalid selection")
			return
		}

		entry, err := flow.Confirm(c.Request.Context(), app.SleepLogs(), session)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to confirm selection")
			return
		}

		metrics.RecommendationsConfirmedTotal.Inc()
		HandleSuccess(c, http.StatusCreated, entry, nil)
	}
}
