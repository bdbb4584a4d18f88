package syncstate

import (
	"context"
	"fmt"
	"time"
)

// Progress 当前运行的进度快照
type Progress struct {
	RunID        string    `json:"run_id,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	Running      bool      `json:"running"`
	Cursor       int       `json:"cursor"`
	SuccessCount int       `json:"success_count"`
	StartedAt    time.Time `json:"started_at,omitempty"`
}

// String 用于"已有同步在运行"时的响应
func (p Progress) String() string {
	return fmt.Sprintf("sync already in progress (run %s, mode %s): cursor=%d, saved=%d",
		p.RunID, p.Mode, p.Cursor, p.SuccessCount)
}

// Guard 单飞锁：同一时刻最多一个同步运行
type Guard interface {
	// TryAcquire 原子地检查并占用。已被占用时返回 false 与当前进度；出错时不持有锁
	TryAcquire(ctx context.Context, p Progress) (bool, Progress, error)
	// Update 更新当前运行的游标与成功数
	Update(ctx context.Context, cursor, successCount int) error
	// Release 释放锁，重复释放无副作用
	Release(ctx context.Context) error
	Snapshot(ctx context.Context) (Progress, error)
}
