package extract

import (
	"time"

	"LeagueSync/internal/model"
)

// FromExportGame 把 data.json 中的一局转换为 MatchRecord。
// roster 为 pid -> 名字；找不到的 pid 名字留空，由身份解析阶段跳过该座位
func FromExportGame(game model.ExportGame, roster map[int64]string) (*model.MatchRecord, error) {
	if len(game.Results) == 0 {
		return nil, failf("对局 %d 没有成绩", game.GID)
	}
	season, table := ParseSeasonTable(game.Description, int(game.GID))
	rec := &model.MatchRecord{
		SourceID:    game.GID,
		SeasonNum:   season,
		TableNum:    table,
		Description: game.Description,
		Processed:   true,
	}
	if t, err := time.Parse("2006-01-02", game.Played); err == nil {
		rec.GameTime = &t
	}

	for _, r := range game.Results {
		if r.Result == nil {
			return nil, failf("对局 %d 玩家 %d 缺少点数", game.GID, r.Player)
		}
		if r.Seat == "" {
			return nil, failf("对局 %d 玩家 %d 缺少座位", game.GID, r.Player)
		}
		pid := r.Player
		entry := model.SeatEntry{
			RawSeat:    r.Seat,
			Seat:       NormalizeSeat(r.Seat),
			PlayerName: roster[pid],
			PlayerRef:  &pid,
			Score:      *r.Result,
			Position:   valueOr(r.Position, 0),
			Uma:        valueOr(r.Uma, 0),
			Penalty:    valueOr(r.Penalty, 0),
			Total:      valueOr(r.Total, 0),
		}
		rec.Entries = append(rec.Entries, entry)
	}
	return rec, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
