package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourname/sleepcycle/internal/auth"
	"github.com/yourname/sleepcycle/internal/metrics"
)

func SetupRouter(app App) *gin.Engine {
	if app.Config().Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/api")
	{
		public.POST("/register", Register(app))
		public.POST("/login", Login(app))
		public.POST("/logout", Logout(app))
		public.POST("/recommendations", Recommend(app))
	}

	protected := r.Group("/api")
	protected.Use(auth.CookieAuth(app.Sessions()))
	{
		protected.GET("/me", Me(app))
		protected.GET("/sleepLogs", ListSleepLogs(app))
		protected.POST("/sleepLogs", CreateSleepLog(app))
		protected.PUT("/sleepLogs/:id", UpdateSleepLog(app))
		protected.DELETE("/sleepLogs/:id", DeleteSleepLog(app))
		protected.DELETE("/sleepLogs", DeleteAllSleepLogs(app))
		protected.POST("/recommendations/confirm", ConfirmRecommendation(app))
	}

	return r
}
