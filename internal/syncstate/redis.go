package syncstate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockKey     = "league:sync:lock"
	progressKey = "league:sync:progress"
)

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// RedisGuard 多实例部署时的单飞锁：SET NX 加过期时间，进度写入 hash
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	runID  string
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) TryAcquire(ctx context.Context, p Progress) (bool, Progress, error) {
	ok, err := g.client.SetNX(ctx, lockKey, p.RunID, g.ttl).Result()
	if err != nil {
		return false, Progress{}, fmt.Errorf("获取同步锁失败: %w", err)
	}
	if !ok {
		cur, err := g.Snapshot(ctx)
		return false, cur, err
	}
	g.runID = p.RunID
	p.Running = true
	if err := g.client.HSet(ctx, progressKey,
		"run_id", p.RunID,
		"mode", p.Mode,
		"cursor", p.Cursor,
		"success_count", p.SuccessCount,
		"started_at", p.StartedAt.Format(time.RFC3339),
	).Err(); err != nil {
		if rerr := g.Release(ctx); rerr != nil {
			return false, Progress{}, fmt.Errorf("写入同步进度失败: %w (%v)", err, rerr)
		}
		return false, Progress{}, fmt.Errorf("写入同步进度失败: %w", err)
	}
	return true, p, nil
}

// Update 写进度并续期锁
func (g *RedisGuard) Update(ctx context.Context, cursor, successCount int) error {
	pipe := g.client.TxPipeline()
	pipe.HSet(ctx, progressKey, "cursor", cursor, "success_count", successCount)
	pipe.Expire(ctx, lockKey, g.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("更新同步进度失败: %w", err)
	}
	return nil
}

func (g *RedisGuard) Release(ctx context.Context) error {
	if g.runID == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, g.client, []string{lockKey}, g.runID).Err(); err != nil {
		return fmt.Errorf("释放同步锁失败: %w", err)
	}
	g.runID = ""
	return nil
}

func (g *RedisGuard) Snapshot(ctx context.Context) (Progress, error) {
	var p Progress
	owner, err := g.client.Get(ctx, lockKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return p, fmt.Errorf("读取同步锁失败: %w", err)
	}
	fields, err := g.client.HGetAll(ctx, progressKey).Result()
	if err != nil {
		return p, fmt.Errorf("读取同步进度失败: %w", err)
	}
	p.RunID = fields["run_id"]
	p.Mode = fields["mode"]
	p.Cursor, _ = strconv.Atoi(fields["cursor"])
	p.SuccessCount, _ = strconv.Atoi(fields["success_count"])
	if ts, err := time.Parse(time.RFC3339, fields["started_at"]); err == nil {
		p.StartedAt = ts
	}
	p.Running = owner != "" && owner == p.RunID
	return p, nil
}
