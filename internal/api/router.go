package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(app App) *gin.Engine {
	r := gin.New()
	// The rate limiter keys on ClientIP, so forwarded headers only count from
	// configured proxies.
	if err := r.SetTrustedProxies(app.TrustedProxies()); err != nil {
		app.Logger().Warn("invalid trusted proxies, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(app.Logger()))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": app.Version()})
	})

	limited := r.Group("/", RateLimitMiddleware(app.MaxRequestsPerMin(), app.Logger()))
	limited.GET("/", GetPage(app))
	limited.POST("/calc", PostCalc(app))

	g := limited.Group("/api")
	g.GET("/schedule", GetSchedule(app))
	g.GET("/status", GetStatus(app))
	g.GET("/reminders", GetReminders(app))
	g.POST("/wake", PostWake(app))
	g.POST("/goal", PostGoal(app))
	g.PUT("/overrides", PutOverrides(app))
	g.POST("/shift", PostShift(app))
	g.DELETE("/state", DeleteState(app))

	return r
}
