package interfaces

import (
	"context"

	"LeagueSync/internal/model"
)

// PlayerReader 只读玩家视图（dry run 只依赖它，保证不会写库）
type PlayerReader interface {
	ListPlayers(ctx context.Context) ([]*model.Player, error)
}

// LeagueStore 对账流程使用的存储接口。
// 未找到返回 repository.ErrNotFound，主键冲突返回 repository.ErrDuplicateKey
type LeagueStore interface {
	PlayerReader
	CreatePlayer(ctx context.Context, name string) (int64, error)
	CreatePlayerWithID(ctx context.Context, id int64, name string) (int64, error)
	UpdatePlayer(ctx context.Context, id int64, name string) error

	GetGameBySeasonAndTable(ctx context.Context, seasonNum, tableNum int) (*model.Game, error)
	CreateGame(ctx context.Context, game *model.Game) (int64, error)
	UpdateGame(ctx context.Context, game *model.Game) error

	GetResultByTableAndPlayer(ctx context.Context, tableID, playerID int64) (*model.Result, error)
	CreateResult(ctx context.Context, result *model.Result) error
	UpdateResult(ctx context.Context, result *model.Result) error
	DeleteResultsByTable(ctx context.Context, tableID int64) (int64, error)
}

// SyncRunRecorder 同步运行记录
type SyncRunRecorder interface {
	StartRun(ctx context.Context, run *model.SyncRun) error
	FinishRun(ctx context.Context, run *model.SyncRun) error
}
