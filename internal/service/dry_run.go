package service

import (
	"context"
	"fmt"
	"sort"

	"LeagueSync/internal/extract"
	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/model"

	"github.com/sirupsen/logrus"
)

const gamesPreviewLimit = 10

// DryRunReport 不写库的同步预览
type DryRunReport struct {
	Summary       DryRunSummary  `json:"summary"`
	Players       DryRunPlayers  `json:"players"`
	Warnings      []Warning      `json:"warnings"`
	GamesPreview  []GamePreview  `json:"games_preview"`
	GamesBySeason map[string]int `json:"games_by_season"`
}

type DryRunSummary struct {
	TotalGames           int         `json:"total_games"`
	TotalPlayers         int         `json:"total_players"`
	NewPlayersCount      int         `json:"new_players_count"`
	ExistingPlayersCount int         `json:"existing_players_count"`
	WarningsCount        int         `json:"warnings_count"`
	SeasonDistribution   map[int]int `json:"season_distribution"`
}

type DryRunPlayers struct {
	All      []string `json:"all_players"`
	New      []string `json:"new_players"`
	Existing []string `json:"existing_players"`
}

type GamePreview struct {
	GID         int64             `json:"gid"`
	Played      string            `json:"played"`
	Description string            `json:"description"`
	SeasonNum   int               `json:"season_num"`
	TableNum    int               `json:"table_num"`
	Players     []PreviewPlayer   `json:"players"`
	Seats       map[string]string `json:"seat_assignment"`
}

type PreviewPlayer struct {
	Name         string  `json:"name"`
	Seat         string  `json:"seat"`
	OriginalSeat string  `json:"original_seat"`
	Score        float64 `json:"score"`
	Position     int     `json:"position"`
	Uma          float64 `json:"uma"`
	Penalty      float64 `json:"penalty"`
	Total        float64 `json:"total"`
	IsNewPlayer  bool    `json:"is_new_player"`
}

// DryRunService 只依赖 PlayerReader，不可能写库
type DryRunService struct {
	players interfaces.PlayerReader
	feed    interfaces.ExportFeed
	logger  *logrus.Logger
}

func NewDryRunService(players interfaces.PlayerReader, feed interfaces.ExportFeed, logger *logrus.Logger) *DryRunService {
	return &DryRunService{players: players, feed: feed, logger: logger}
}

// Analyze 拉取整包数据，按与同步相同的抽取规则分析
func (s *DryRunService) Analyze(ctx context.Context) (*DryRunReport, error) {
	export, err := s.feed.FetchExport(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取导出数据失败: %w", err)
	}
	existing, err := s.players.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取玩家列表失败: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[p.Name] = true
	}
	report := analyzeExport(&export.Collection, known)
	s.logger.WithFields(logrus.Fields{
		"games":       report.Summary.TotalGames,
		"new_players": report.Summary.NewPlayersCount,
		"warnings":    report.Summary.WarningsCount,
	}).Info("dry run 完成")
	return report, nil
}

func analyzeExport(c *model.ExportCollection, known map[string]bool) *DryRunReport {
	roster := c.Roster()
	report := &DryRunReport{
		Warnings:      []Warning{},
		GamesPreview:  []GamePreview{},
		GamesBySeason: map[string]int{"season_0": 0, "season_1": 0, "other_seasons": 0},
	}
	report.Summary.TotalGames = len(c.Games)
	report.Summary.SeasonDistribution = make(map[int]int)
	all := make(map[string]bool)

	for _, g := range c.Games {
		rec, err := extract.FromExportGame(g, roster)
		if err != nil {
			report.Warnings = append(report.Warnings, newWarning(WarnExtraction, g.GID, "对局 %d 抽取失败: %v", g.GID, err))
			continue
		}
		report.Summary.SeasonDistribution[rec.SeasonNum]++
		switch rec.SeasonNum {
		case 0:
			report.GamesBySeason["season_0"]++
		case 1:
			report.GamesBySeason["season_1"]++
		default:
			report.GamesBySeason["other_seasons"]++
		}

		preview := GamePreview{
			GID:         g.GID,
			Played:      g.Played,
			Description: g.Description,
			SeasonNum:   rec.SeasonNum,
			TableNum:    rec.TableNum,
			Players:     make([]PreviewPlayer, 0, len(rec.Entries)),
			Seats:       make(map[string]string, len(model.Seats)),
		}
		for _, e := range rec.Entries {
			name := e.PlayerName
			if name == "" {
				report.Warnings = append(report.Warnings, newWarning(WarnUnknownPlayer, g.GID, "对局 %d 中找不到玩家%s", g.GID, refSuffix(e.PlayerRef)))
				if e.PlayerRef != nil {
					name = fmt.Sprintf("Unknown_%d", *e.PlayerRef)
				}
			} else {
				all[name] = true
			}
			if e.Seat == model.SeatUnknown {
				w := newWarning(WarnMalformedSeat, g.GID, "对局 %d 中玩家 %s 的座位无法识别: %s", g.GID, name, e.RawSeat)
				w.Player = name
				report.Warnings = append(report.Warnings, w)
			} else {
				if _, taken := preview.Seats[string(e.Seat)]; taken {
					w := newWarning(WarnDuplicateSeat, g.GID, "对局 %d 中座位 %s 被分配给多个玩家", g.GID, e.Seat)
					w.Seat = string(e.Seat)
					report.Warnings = append(report.Warnings, w)
				} else {
					preview.Seats[string(e.Seat)] = name
				}
			}
			preview.Players = append(preview.Players, PreviewPlayer{
				Name:         name,
				Seat:         string(e.Seat),
				OriginalSeat: e.RawSeat,
				Score:        e.Score,
				Position:     e.Position,
				Uma:          e.Uma,
				Penalty:      e.Penalty,
				Total:        e.Total,
				IsNewPlayer:  e.PlayerName != "" && !known[e.PlayerName],
			})
		}
		if len(rec.Entries) != len(model.Seats) {
			report.Warnings = append(report.Warnings, newWarning(WarnPlayerCount, g.GID, "对局 %d 玩家数量不是4个: %d", g.GID, len(rec.Entries)))
		}
		for _, seat := range model.Seats {
			if _, ok := preview.Seats[string(seat)]; !ok {
				w := newWarning(WarnMissingSeat, g.GID, "对局 %d 缺少 %s 座位的玩家", g.GID, seat)
				w.Seat = string(seat)
				report.Warnings = append(report.Warnings, w)
			}
		}
		if len(report.GamesPreview) < gamesPreviewLimit {
			report.GamesPreview = append(report.GamesPreview, preview)
		}
	}

	report.Players.All = sortedKeys(all)
	report.Players.New = []string{}
	report.Players.Existing = []string{}
	for _, name := range report.Players.All {
		if known[name] {
			report.Players.Existing = append(report.Players.Existing, name)
		} else {
			report.Players.New = append(report.Players.New, name)
		}
	}
	report.Summary.TotalPlayers = len(report.Players.All)
	report.Summary.NewPlayersCount = len(report.Players.New)
	report.Summary.ExistingPlayersCount = len(report.Players.Existing)
	report.Summary.WarningsCount = len(report.Warnings)
	return report
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
