package model

import (
	"time"

	"gorm.io/datatypes"
)

// Player 联赛玩家。ID 一经分配不可变，Name 可能随上游改名而更新
type Player struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement;comment:玩家ID（自增或沿用数据源pid）"`
	Name string `gorm:"column:name;type:varchar(128);not null;comment:玩家名"`
}

// Game 一桌四人对局。(season_num, table_num) 为自然键，ID 只用于关联成绩行
type Game struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement;comment:代理主键"`
	SeasonNum int        `gorm:"column:season_num;not null;uniqueIndex:uk_season_table;comment:赛季号"`
	TableNum  int        `gorm:"column:table_num;not null;uniqueIndex:uk_season_table;comment:桌号"`
	GameTime  *time.Time `gorm:"column:game_time;type:timestamp;comment:对局时间"`
	Processed bool       `gorm:"column:processed;type:boolean;default:false;comment:是否已结算"`
	E         *int64     `gorm:"column:e;comment:东家玩家ID"`
	S         *int64     `gorm:"column:s;comment:南家玩家ID"`
	W         *int64     `gorm:"column:w;comment:西家玩家ID"`
	N         *int64     `gorm:"column:n;comment:北家玩家ID（三麻为空）"`
}

// Result 单个玩家在某桌的成绩，(table_id, player_id) 唯一
type Result struct {
	ID       int64   `gorm:"column:id;primaryKey;autoIncrement"`
	TableID  int64   `gorm:"column:table_id;not null;uniqueIndex:uk_table_player;comment:关联对局ID"`
	PlayerID int64   `gorm:"column:player_id;not null;uniqueIndex:uk_table_player;index;comment:关联玩家ID"`
	Score    float64 `gorm:"column:result;type:double precision;not null;comment:终局点数"`
	Position int     `gorm:"column:position;not null;default:0;comment:顺位"`
	Uma      float64 `gorm:"column:uma;type:double precision;default:0"`
	Penalty  float64 `gorm:"column:penalty;type:double precision;default:0"`
	Total    float64 `gorm:"column:total;type:double precision;default:0"`
}

// SyncRun 同步运行记录（运行级诊断）
type SyncRun struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID        string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null"`
	Mode           string         `gorm:"column:mode;type:varchar(16);not null"`
	Status         string         `gorm:"column:status;type:varchar(16);not null;comment:running/succeeded/failed"`
	StartedAt      time.Time      `gorm:"column:started_at;type:timestamp;not null"`
	FinishedAt     *time.Time     `gorm:"column:finished_at;type:timestamp"`
	Processed      int            `gorm:"column:processed;default:0"`
	Saved          int            `gorm:"column:saved;default:0"`
	Failed         int            `gorm:"column:failed;default:0"`
	PlayersCreated int            `gorm:"column:players_created;default:0"`
	PlayersRenamed int            `gorm:"column:players_renamed;default:0"`
	Warnings       datatypes.JSON `gorm:"column:warnings;type:jsonb"`
	Error          *string        `gorm:"column:error;type:text"`
}

func (Player) TableName() string  { return "league_players" }
func (Game) TableName() string    { return "league_games" }
func (Result) TableName() string  { return "league_results" }
func (SyncRun) TableName() string { return "league_sync_runs" }

// SeatPlayer 返回某个座位上的玩家ID
func (g *Game) SeatPlayer(seat Seat) *int64 {
	switch seat {
	case SeatEast:
		return g.E
	case SeatSouth:
		return g.S
	case SeatWest:
		return g.W
	case SeatNorth:
		return g.N
	}
	return nil
}

// SetSeat 设置座位上的玩家ID，未识别座位忽略
func (g *Game) SetSeat(seat Seat, playerID int64) {
	id := playerID
	switch seat {
	case SeatEast:
		g.E = &id
	case SeatSouth:
		g.S = &id
	case SeatWest:
		g.W = &id
	case SeatNorth:
		g.N = &id
	}
}
