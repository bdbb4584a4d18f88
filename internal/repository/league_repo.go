package repository

import (
	"context"

	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/model"

	"gorm.io/gorm"
)

// LeagueQueryRepository 面向查询接口的只读仓储
type LeagueQueryRepository interface {
	// ListSeasons 所有出现过的赛季号（升序）
	ListSeasons(ctx context.Context) ([]int, error)
	// ListPlayerNames 玩家名列表；season 非空时只返回该赛季有成绩的玩家
	ListPlayerNames(ctx context.Context, season *int) ([]string, error)
	GetPlayerByName(ctx context.Context, name string) (*model.Player, error)
	// ListGamesByPlayer 玩家参与过的对局，按 (season_num, table_num) 排序
	ListGamesByPlayer(ctx context.Context, playerID int64, season *int) ([]*model.Game, error)
	ListResultsByTables(ctx context.Context, tableIDs []int64) ([]*model.Result, error)
	ListPlayersByIDs(ctx context.Context, ids []int64) ([]*model.Player, error)
}

// LeagueRepository 同步写入 + 查询
type LeagueRepository interface {
	interfaces.LeagueStore
	LeagueQueryRepository
}

type leagueRepository struct {
	db *gorm.DB
}

// NewLeagueRepository 创建 LeagueRepository 实例
func NewLeagueRepository(db *gorm.DB) LeagueRepository {
	return &leagueRepository{db: db}
}

// ListPlayers 全量玩家快照（每次同步开始时读取一次）
func (r *leagueRepository) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	var players []*model.Player
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

// CreatePlayer 由数据库分配 ID
func (r *leagueRepository) CreatePlayer(ctx context.Context, name string) (int64, error) {
	p := model.Player{Name: name}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return 0, classify(err)
	}
	return p.ID, nil
}

// CreatePlayerWithID 沿用数据源的 pid 插入，随后把自增序列推进到 MAX(id)，
// 避免之后 CreatePlayer 分配到已被占用的 ID
func (r *leagueRepository) CreatePlayerWithID(ctx context.Context, id int64, name string) (int64, error) {
	p := model.Player{ID: id, Name: name}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return tx.Exec(
			"SELECT setval(pg_get_serial_sequence(?, 'id'), (SELECT COALESCE(MAX(id), 1) FROM league_players))",
			model.Player{}.TableName(),
		).Error
	})
	if err != nil {
		return 0, classify(err)
	}
	return p.ID, nil
}

// UpdatePlayer 原地改名，ID 不变
func (r *leagueRepository) UpdatePlayer(ctx context.Context, id int64, name string) error {
	res := r.db.WithContext(ctx).Model(&model.Player{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetGameBySeasonAndTable 按自然键查询对局
func (r *leagueRepository) GetGameBySeasonAndTable(ctx context.Context, seasonNum, tableNum int) (*model.Game, error) {
	var g model.Game
	if err := r.db.WithContext(ctx).
		Where("season_num = ? AND table_num = ?", seasonNum, tableNum).
		First(&g).Error; err != nil {
		return nil, classify(err)
	}
	return &g, nil
}

// CreateGame 插入对局，ID 由数据库分配
func (r *leagueRepository) CreateGame(ctx context.Context, game *model.Game) (int64, error) {
	if err := r.db.WithContext(ctx).Create(game).Error; err != nil {
		return 0, classify(err)
	}
	return game.ID, nil
}

// UpdateGame 覆盖时间、结算状态与座位（空座位写 NULL）
func (r *leagueRepository) UpdateGame(ctx context.Context, game *model.Game) error {
	res := r.db.WithContext(ctx).Model(game).
		Select("game_time", "processed", "e", "s", "w", "n").
		Updates(game)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *leagueRepository) GetResultByTableAndPlayer(ctx context.Context, tableID, playerID int64) (*model.Result, error) {
	var res model.Result
	if err := r.db.WithContext(ctx).
		Where("table_id = ? AND player_id = ?", tableID, playerID).
		First(&res).Error; err != nil {
		return nil, classify(err)
	}
	return &res, nil
}

func (r *leagueRepository) CreateResult(ctx context.Context, result *model.Result) error {
	return classify(r.db.WithContext(ctx).Create(result).Error)
}

// UpdateResult 按主键覆盖成绩字段（零值同样写入）
func (r *leagueRepository) UpdateResult(ctx context.Context, result *model.Result) error {
	res := r.db.WithContext(ctx).Model(result).
		Select("result", "position", "uma", "penalty", "total").
		Updates(result)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteResultsByTable 删除某桌全部成绩，返回删除行数
func (r *leagueRepository) DeleteResultsByTable(ctx context.Context, tableID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("table_id = ?", tableID).Delete(&model.Result{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *leagueRepository) ListSeasons(ctx context.Context) ([]int, error) {
	var seasons []int
	if err := r.db.WithContext(ctx).Model(&model.Game{}).
		Distinct("season_num").
		Order("season_num ASC").
		Pluck("season_num", &seasons).Error; err != nil {
		return nil, err
	}
	return seasons, nil
}

func (r *leagueRepository) ListPlayerNames(ctx context.Context, season *int) ([]string, error) {
	var names []string
	db := r.db.WithContext(ctx).Model(&model.Player{})
	if season != nil {
		db = db.Distinct("league_players.name").
			Joins("JOIN league_results ON league_results.player_id = league_players.id").
			Joins("JOIN league_games ON league_games.id = league_results.table_id").
			Where("league_games.season_num = ?", *season)
	}
	if err := db.Order("league_players.name ASC").Pluck("league_players.name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (r *leagueRepository) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	var p model.Player
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("id ASC").First(&p).Error; err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

func (r *leagueRepository) ListGamesByPlayer(ctx context.Context, playerID int64, season *int) ([]*model.Game, error) {
	sub := r.db.Model(&model.Result{}).Select("table_id").Where("player_id = ?", playerID)
	db := r.db.WithContext(ctx).Where("id IN (?)", sub)
	if season != nil {
		db = db.Where("season_num = ?", *season)
	}
	var games []*model.Game
	if err := db.Order("season_num ASC, table_num ASC").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (r *leagueRepository) ListResultsByTables(ctx context.Context, tableIDs []int64) ([]*model.Result, error) {
	if len(tableIDs) == 0 {
		return []*model.Result{}, nil
	}
	var results []*model.Result
	if err := r.db.WithContext(ctx).Where("table_id IN ?", tableIDs).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *leagueRepository) ListPlayersByIDs(ctx context.Context, ids []int64) ([]*model.Player, error) {
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}
	var players []*model.Player
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}
