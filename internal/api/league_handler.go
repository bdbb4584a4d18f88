package api

import (
	"errors"
	"net/http"
	"strconv"

	"LeagueSync/internal/repository"
	"LeagueSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LeagueHandler 联赛数据查询接口
type LeagueHandler struct {
	leagueService *service.LeagueService
	logger        *logrus.Logger
}

func NewLeagueHandler(leagueService *service.LeagueService, logger *logrus.Logger) *LeagueHandler {
	return &LeagueHandler{leagueService: leagueService, logger: logger}
}

// ListSeasons GET /api/seasons
func (h *LeagueHandler) ListSeasons(c *gin.Context) {
	seasons, err := h.leagueService.ListSeasons(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListSeasons failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"seasons": seasons})
}

// ListPlayers GET /api/players?season=3
func (h *LeagueHandler) ListPlayers(c *gin.Context) {
	season, ok := seasonQuery(c)
	if !ok {
		return
	}
	players, err := h.leagueService.ListPlayers(c.Request.Context(), season)
	if err != nil {
		h.logger.WithError(err).Error("ListPlayers failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": players})
}

// PlayerMatches GET /api/players/:name/matches?season=3
func (h *LeagueHandler) PlayerMatches(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player name is required"})
		return
	}
	season, ok := seasonQuery(c)
	if !ok {
		return
	}
	matches, err := h.leagueService.PlayerMatches(c.Request.Context(), name, season)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		h.logger.WithError(err).WithField("player", name).Error("PlayerMatches failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": name, "matches": matches})
}

// seasonQuery 解析可选的 season 参数，非法时已写 400
func seasonQuery(c *gin.Context) (*int, bool) {
	raw := c.Query("season")
	if raw == "" {
		return nil, true
	}
	season, err := strconv.Atoi(raw)
	if err != nil || season < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "season must be a non-negative integer"})
		return nil, false
	}
	return &season, true
}
