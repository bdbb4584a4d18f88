package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"LeagueSync/internal/adapter"
	"LeagueSync/internal/config"
	"LeagueSync/internal/extract"
	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/metrics"
	"LeagueSync/internal/model"
	"LeagueSync/internal/syncstate"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/datatypes"
)

// 运行记录里最多保存的警告条数
const maxStoredWarnings = 500

// SyncSummary 一次同步的统计
type SyncSummary struct {
	RunID          string    `json:"run_id"`
	Mode           string    `json:"mode"`
	Processed      int       `json:"processed"`
	Saved          int       `json:"saved"`
	Failed         int       `json:"failed"`
	PlayersCreated int       `json:"players_created"`
	PlayersRenamed int       `json:"players_renamed"`
	Warnings       []Warning `json:"warnings"`
}

func (s *SyncSummary) String() string {
	return fmt.Sprintf("sync finished (run %s, mode %s): processed=%d, saved=%d, failed=%d, players_created=%d, players_renamed=%d, warnings=%d",
		s.RunID, s.Mode, s.Processed, s.Saved, s.Failed, s.PlayersCreated, s.PlayersRenamed, len(s.Warnings))
}

// SyncService 同步编排：单飞锁 → 拉取 → 抽取 → 身份解析 → 写库
type SyncService struct {
	store      interfaces.LeagueStore
	runs       interfaces.SyncRunRecorder
	tableFeed  interfaces.TableFeed
	exportFeed interfaces.ExportFeed
	guard      syncstate.Guard
	cfg        *config.Config
	logger     *logrus.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewSyncService runs 可为 nil（不记录运行历史）
func NewSyncService(
	store interfaces.LeagueStore,
	runs interfaces.SyncRunRecorder,
	tableFeed interfaces.TableFeed,
	exportFeed interfaces.ExportFeed,
	guard syncstate.Guard,
	cfg *config.Config,
	logger *logrus.Logger,
) *SyncService {
	return &SyncService{
		store:      store,
		runs:       runs,
		tableFeed:  tableFeed,
		exportFeed: exportFeed,
		guard:      guard,
		cfg:        cfg,
		logger:     logger,
		sleep:      sleepContext,
		now:        time.Now,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Trigger 手动触发入口：不带 force 只返回提示，不启动同步
func (s *SyncService) Trigger(ctx context.Context, force bool) (string, error) {
	if !force {
		return "sync trigger acknowledged; pass force=true to run a full sync", nil
	}
	return s.Run(ctx)
}

// Status 当前单飞锁中的进度
func (s *SyncService) Status(ctx context.Context) (syncstate.Progress, error) {
	return s.guard.Snapshot(ctx)
}

// Run 执行一次完整同步。已有同步在运行时直接返回其进度
func (s *SyncService) Run(ctx context.Context) (string, error) {
	mode := s.cfg.Sync.Mode
	progress := syncstate.Progress{RunID: uuid.NewString(), Mode: mode, StartedAt: s.now()}

	ok, current, err := s.guard.TryAcquire(ctx, progress)
	if err != nil {
		if ok {
			if rerr := s.guard.Release(context.WithoutCancel(ctx)); rerr != nil {
				s.logger.WithError(rerr).Error("释放同步锁失败")
			}
		}
		return "", fmt.Errorf("获取同步锁失败: %w", err)
	}
	if !ok {
		metrics.SyncRunsTotal.WithLabelValues(mode, "busy").Inc()
		s.logger.WithFields(logrus.Fields{"run_id": current.RunID, "cursor": current.Cursor}).Info("已有同步在运行")
		return current.String(), nil
	}

	// 调用方断开不影响已经开始的同步
	runCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := s.guard.Release(runCtx); err != nil {
			s.logger.WithError(err).Error("释放同步锁失败")
		}
	}()
	metrics.SyncInProgress.Set(1)
	defer metrics.SyncInProgress.Set(0)

	summary := &SyncSummary{RunID: progress.RunID, Mode: mode}
	run := &model.SyncRun{
		RunUUID:   progress.RunID,
		Mode:      mode,
		Status:    "running",
		StartedAt: progress.StartedAt,
	}
	if s.runs != nil {
		if err := s.runs.StartRun(runCtx, run); err != nil {
			s.logger.WithError(err).Warn("保存同步运行记录失败")
		}
	}

	log := s.logger.WithFields(logrus.Fields{"run_id": progress.RunID, "mode": mode})
	log.Info("开始同步")
	runErr := s.execute(runCtx, summary)
	s.finish(runCtx, run, summary, runErr)

	if runErr != nil {
		log.WithError(runErr).WithField("processed", summary.Processed).Error("同步失败")
		return summary.String(), runErr
	}
	log.WithFields(logrus.Fields{
		"processed": summary.Processed,
		"saved":     summary.Saved,
		"failed":    summary.Failed,
	}).Info("同步完成")
	return summary.String(), nil
}

// execute 运行同步主体，panic 转为错误
func (s *SyncService) execute(ctx context.Context, summary *SyncSummary) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("同步过程 panic: %v", r)
		}
	}()

	resolver, err := NewIdentityResolver(ctx, s.store, s.logger)
	if err != nil {
		return err
	}
	st := &runState{
		summary:    summary,
		resolver:   resolver,
		reconciler: NewReconciler(s.store, s.cfg.Sync.ResultPolicy, s.logger),
	}
	defer func() {
		summary.PlayersCreated = resolver.Created()
		summary.PlayersRenamed = resolver.Renamed()
	}()

	switch s.cfg.Sync.Mode {
	case config.ModeTable:
		return s.runTable(ctx, st)
	case config.ModeExport:
		return s.runExport(ctx, st)
	default:
		return fmt.Errorf("未知的同步模式: %q", s.cfg.Sync.Mode)
	}
}

type runState struct {
	summary    *SyncSummary
	resolver   *IdentityResolver
	reconciler *Reconciler
}

func (st *runState) warn(ws ...Warning) {
	st.summary.Warnings = append(st.summary.Warnings, ws...)
}

// runTable 分页模式：游标从 0 开始，直到数据源返回 502
func (s *SyncService) runTable(ctx context.Context, st *runState) error {
	if s.tableFeed == nil {
		return errors.New("分页数据源未配置")
	}
	var limiter *rate.Limiter
	if pause := s.cfg.Sync.PagePause; pause > 0 {
		limiter = rate.NewLimiter(rate.Every(pause), 1)
	}
	maxRetries := s.cfg.Source.RetryCount

	cursor, retries := 0, 0
	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}
		s.updateProgress(ctx, cursor, st.summary.Saved)

		page, err := s.tableFeed.FetchTable(ctx, cursor)
		if err != nil {
			log := s.logger.WithError(err).WithField("cursor", cursor)
			switch {
			case errors.Is(err, adapter.ErrUpstreamExhausted):
				log.Info("数据源已无更多页面")
				return nil
			case errors.Is(err, adapter.ErrPageUnavailable):
				log.Warn("页面不可用，跳过")
				st.warn(newWarning(WarnPageUnavailable, int64(cursor), "页面 %d 不可用: %v", cursor, err))
				cursor++
				retries = 0
				continue
			case adapter.IsRetryable(err):
				retries++
				if maxRetries > 0 && retries > maxRetries {
					return fmt.Errorf("页面 %d 重试 %d 次仍失败: %w", cursor, maxRetries, err)
				}
				log.WithField("retry", retries).Warn("网络错误，稍后重试")
				if err := s.sleep(ctx, s.cfg.Sync.RetryBackoff); err != nil {
					return err
				}
				continue
			default:
				return fmt.Errorf("拉取页面 %d 失败: %w", cursor, err)
			}
		}
		retries = 0

		st.summary.Processed++
		rec, err := extract.FromTablePage(page, cursor)
		if err != nil {
			s.recordFailure(st, int64(cursor), WarnExtraction, err)
		} else {
			s.processRecord(ctx, st, rec)
		}
		cursor++
	}
}

// runExport 整包模式：拉取或解析失败直接结束；单条对局失败只计数
func (s *SyncService) runExport(ctx context.Context, st *runState) error {
	if s.exportFeed == nil {
		return errors.New("整包数据源未配置")
	}
	export, err := s.exportFeed.FetchExport(ctx)
	if err != nil {
		return fmt.Errorf("拉取导出数据失败: %w", err)
	}
	collection := export.Collection
	st.warn(st.resolver.SyncRoster(ctx, collection.Players)...)

	roster := collection.Roster()
	for _, game := range collection.Games {
		s.updateProgress(ctx, int(game.GID), st.summary.Saved)
		st.summary.Processed++
		rec, err := extract.FromExportGame(game, roster)
		if err != nil {
			s.recordFailure(st, game.GID, WarnExtraction, err)
			continue
		}
		s.processRecord(ctx, st, rec)
	}
	return nil
}

func (s *SyncService) processRecord(ctx context.Context, st *runState, rec *model.MatchRecord) {
	ids, warnings := st.resolver.Resolve(ctx, rec)
	st.warn(warnings...)

	out, err := st.reconciler.Apply(ctx, rec, ids)
	if out != nil {
		st.warn(out.Warnings...)
	}
	if err != nil {
		s.recordFailure(st, rec.SourceID, WarnPersistence, err)
		return
	}
	if out.GameCreated {
		st.summary.Saved++
	}
}

func (s *SyncService) recordFailure(st *runState, sourceID int64, kind string, err error) {
	st.summary.Failed++
	st.warn(newWarning(kind, sourceID, "%v", err))
	s.logger.WithError(err).WithFields(logrus.Fields{"source_id": sourceID, "kind": kind}).Warn("记录处理失败")
}

func (s *SyncService) updateProgress(ctx context.Context, cursor, saved int) {
	if err := s.guard.Update(ctx, cursor, saved); err != nil {
		s.logger.WithError(err).Debug("更新同步进度失败")
	}
}

// finish 写运行记录与指标
func (s *SyncService) finish(ctx context.Context, run *model.SyncRun, summary *SyncSummary, runErr error) {
	finished := s.now()
	status := "succeeded"
	if runErr != nil {
		status = "failed"
		msg := runErr.Error()
		run.Error = &msg
	} else {
		metrics.SyncLastSuccessTimestamp.Set(float64(finished.Unix()))
	}
	metrics.SyncRunsTotal.WithLabelValues(summary.Mode, status).Inc()
	metrics.SyncRunDuration.WithLabelValues(summary.Mode).Observe(finished.Sub(run.StartedAt).Seconds())
	metrics.SyncRecordsTotal.WithLabelValues("processed").Add(float64(summary.Processed))
	metrics.SyncRecordsTotal.WithLabelValues("saved").Add(float64(summary.Saved))
	metrics.SyncRecordsTotal.WithLabelValues("failed").Add(float64(summary.Failed))

	if s.runs == nil {
		return
	}
	run.Status = status
	run.FinishedAt = &finished
	run.Processed = summary.Processed
	run.Saved = summary.Saved
	run.Failed = summary.Failed
	run.PlayersCreated = summary.PlayersCreated
	run.PlayersRenamed = summary.PlayersRenamed
	warnings := summary.Warnings
	if len(warnings) > maxStoredWarnings {
		warnings = warnings[:maxStoredWarnings]
	}
	if raw, err := json.Marshal(warnings); err == nil {
		run.Warnings = datatypes.JSON(raw)
	}
	if err := s.runs.FinishRun(ctx, run); err != nil {
		s.logger.WithError(err).WithField("run_id", run.RunUUID).Warn("更新同步运行记录失败")
	}
}
