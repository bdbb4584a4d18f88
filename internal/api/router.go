package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 注册全部业务路由与 /metrics
func RegisterRoutes(r *gin.Engine, syncHandler *SyncHandler, leagueHandler *LeagueHandler) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello, LeagueSync!")
	})

	r.GET("/sync", syncHandler.Trigger)
	r.POST("/sync", syncHandler.Trigger)
	r.GET("/sync/status", syncHandler.Status)
	r.GET("/sync/dry-run", syncHandler.DryRun)
	r.GET("/sync/runs", syncHandler.ListRuns)

	r.GET("/api/seasons", leagueHandler.ListSeasons)
	r.GET("/api/players", leagueHandler.ListPlayers)
	r.GET("/api/players/:name/matches", leagueHandler.PlayerMatches)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
