package service

import (
	"context"
	"fmt"
	"sort"

	"LeagueSync/internal/model"
	"LeagueSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// LeagueService 联赛数据查询
type LeagueService struct {
	repo   repository.LeagueQueryRepository
	logger *logrus.Logger
}

func NewLeagueService(repo repository.LeagueQueryRepository, logger *logrus.Logger) *LeagueService {
	return &LeagueService{repo: repo, logger: logger}
}

// ListSeasons 所有赛季号
func (s *LeagueService) ListSeasons(ctx context.Context) ([]int, error) {
	seasons, err := s.repo.ListSeasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询赛季失败: %w", err)
	}
	if seasons == nil {
		seasons = []int{}
	}
	return seasons, nil
}

// ListPlayers season 为空返回全部玩家名
func (s *LeagueService) ListPlayers(ctx context.Context, season *int) ([]string, error) {
	names, err := s.repo.ListPlayerNames(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("查询玩家失败: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// PlayerMatches 玩家参与的全部对局（含同桌四家成绩）。玩家不存在返回 repository.ErrNotFound
func (s *LeagueService) PlayerMatches(ctx context.Context, name string, season *int) ([]model.MatchView, error) {
	player, err := s.repo.GetPlayerByName(ctx, name)
	if err != nil {
		return nil, err
	}
	games, err := s.repo.ListGamesByPlayer(ctx, player.ID, season)
	if err != nil {
		return nil, fmt.Errorf("查询对局失败: %w", err)
	}
	tableIDs := make([]int64, 0, len(games))
	for _, g := range games {
		tableIDs = append(tableIDs, g.ID)
	}
	results, err := s.repo.ListResultsByTables(ctx, tableIDs)
	if err != nil {
		return nil, fmt.Errorf("查询成绩失败: %w", err)
	}

	idSet := make(map[int64]struct{})
	for _, r := range results {
		idSet[r.PlayerID] = struct{}{}
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	players, err := s.repo.ListPlayersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("查询玩家失败: %w", err)
	}
	names := make(map[int64]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return buildMatchViews(games, results, names), nil
}

// buildMatchViews 组装视图，成绩按东南西北排序，座位未知的排最后
func buildMatchViews(games []*model.Game, results []*model.Result, names map[int64]string) []model.MatchView {
	byTable := make(map[int64][]*model.Result, len(games))
	for _, r := range results {
		byTable[r.TableID] = append(byTable[r.TableID], r)
	}

	views := make([]model.MatchView, 0, len(games))
	for _, g := range games {
		view := model.MatchView{
			GameID:    g.ID,
			SeasonNum: g.SeasonNum,
			TableNum:  g.TableNum,
			GameTime:  g.GameTime,
			Processed: g.Processed,
			Results:   make([]model.ResultView, 0, len(byTable[g.ID])),
		}
		for _, r := range byTable[g.ID] {
			view.Results = append(view.Results, model.ResultView{
				Seat:       seatOf(g, r.PlayerID),
				PlayerID:   r.PlayerID,
				PlayerName: names[r.PlayerID],
				Score:      r.Score,
				Position:   r.Position,
				Uma:        r.Uma,
				Penalty:    r.Penalty,
				Total:      r.Total,
			})
		}
		sort.SliceStable(view.Results, func(i, j int) bool {
			return seatRank(view.Results[i].Seat) < seatRank(view.Results[j].Seat)
		})
		views = append(views, view)
	}
	return views
}

func seatOf(g *model.Game, playerID int64) model.Seat {
	for _, seat := range model.Seats {
		if id := g.SeatPlayer(seat); id != nil && *id == playerID {
			return seat
		}
	}
	return model.SeatUnknown
}

func seatRank(seat model.Seat) int {
	for i, s := range model.Seats {
		if s == seat {
			return i
		}
	}
	return len(model.Seats)
}
