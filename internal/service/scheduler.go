package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler 按 cron 表达式定时触发同步，重叠的触发由单飞锁挡住
type Scheduler struct {
	cron   *cron.Cron
	sync   *SyncService
	logger *logrus.Logger
}

// NewScheduler spec 为标准 5 段 cron 表达式
func NewScheduler(spec string, sync *SyncService, logger *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), sync: sync, logger: logger}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("解析cron表达式失败(%s): %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	msg, err := s.sync.Run(context.Background())
	if err != nil {
		s.logger.WithError(err).Error("定时同步失败")
		return
	}
	s.logger.WithField("result", msg).Info("定时同步结束")
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.WithField("entries", len(s.cron.Entries())).Info("定时同步已启动")
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
