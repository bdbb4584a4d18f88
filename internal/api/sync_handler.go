package api

import (
	"net/http"
	"strconv"

	"LeagueSync/internal/repository"
	"LeagueSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SyncHandler struct {
	syncService *service.SyncService
	dryRun      *service.DryRunService
	runs        repository.SyncRunRepository
	logger      *logrus.Logger
}

// NewSyncHandler runs 可为 nil（此时 /sync/runs 返回空列表）
func NewSyncHandler(syncService *service.SyncService, dryRun *service.DryRunService, runs repository.SyncRunRepository, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		dryRun:      dryRun,
		runs:        runs,
		logger:      logger,
	}
}

// Trigger 手动触发同步
// GET|POST /sync?force=true
// 返回纯文本：同步统计，或正在运行的同步进度
func (h *SyncHandler) Trigger(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("force"))
	msg, err := h.syncService.Trigger(c.Request.Context(), force)
	if err != nil {
		h.logger.WithError(err).Error("同步失败")
		if msg == "" {
			msg = "sync failed"
		}
		c.String(http.StatusInternalServerError, msg+": "+err.Error())
		return
	}
	c.String(http.StatusOK, msg)
}

// Status 当前同步进度
// GET /sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	progress, err := h.syncService.Status(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("读取同步进度失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

// DryRun 不写库的同步预览
// GET /sync/dry-run
func (h *SyncHandler) DryRun(c *gin.Context) {
	report, err := h.dryRun.Analyze(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("dry run 失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListRuns 最近的同步运行记录
// GET /sync/runs?limit=20
func (h *SyncHandler) ListRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []interface{}{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("ListRecent failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
