package syncstate

import (
	"context"
	"sync"
)

// MemoryGuard 进程内单飞锁
type MemoryGuard struct {
	mu       sync.Mutex
	progress Progress
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{}
}

func (g *MemoryGuard) TryAcquire(_ context.Context, p Progress) (bool, Progress, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.progress.Running {
		return false, g.progress, nil
	}
	p.Running = true
	g.progress = p
	return true, p, nil
}

func (g *MemoryGuard) Update(_ context.Context, cursor, successCount int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.progress.Cursor = cursor
	g.progress.SuccessCount = successCount
	return nil
}

func (g *MemoryGuard) Release(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.progress.Running = false
	return nil
}

func (g *MemoryGuard) Snapshot(_ context.Context) (Progress, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.progress, nil
}
