package model

import "time"

// MatchView 对外查询用的对局视图（含四家成绩与玩家名）
type MatchView struct {
	GameID    int64        `json:"game_id"`
	SeasonNum int          `json:"season_num"`
	TableNum  int          `json:"table_num"`
	GameTime  *time.Time   `json:"game_time,omitempty"`
	Processed bool         `json:"processed"`
	Results   []ResultView `json:"results"`
}

// ResultView 单个座位成绩视图
type ResultView struct {
	Seat       Seat    `json:"seat"`
	PlayerID   int64   `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Score      float64 `json:"score"`
	Position   int     `json:"position"`
	Uma        float64 `json:"uma"`
	Penalty    float64 `json:"penalty"`
	Total      float64 `json:"total"`
}
