package repository

import (
	"context"

	"LeagueSync/internal/model"

	"gorm.io/gorm"
)

// SyncRunRepository 同步运行历史
type SyncRunRepository interface {
	StartRun(ctx context.Context, run *model.SyncRun) error
	FinishRun(ctx context.Context, run *model.SyncRun) error
	// ListRecent 最近的运行记录，按开始时间倒序
	ListRecent(ctx context.Context, limit int) ([]*model.SyncRun, error)
}

type syncRunRepository struct {
	db *gorm.DB
}

func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepository{db: db}
}

func (r *syncRunRepository) StartRun(ctx context.Context, run *model.SyncRun) error {
	return classify(r.db.WithContext(ctx).Create(run).Error)
}

// FinishRun 写入运行结束时的统计与警告
func (r *syncRunRepository) FinishRun(ctx context.Context, run *model.SyncRun) error {
	return classify(r.db.WithContext(ctx).Model(run).
		Select("status", "finished_at", "processed", "saved", "failed",
			"players_created", "players_renamed", "warnings", "error").
		Updates(run).Error)
}

func (r *syncRunRepository) ListRecent(ctx context.Context, limit int) ([]*model.SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var runs []*model.SyncRun
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
