package model

// ========== data.json 导出结构（仅用于反序列化） ==========

// LeagueExport data.json 根结构
type LeagueExport struct {
	Collection ExportCollection `json:"collection"`
}

// ExportCollection 导出集合
type ExportCollection struct {
	Players  []ExportPlayer  `json:"players"`
	Games    []ExportGame    `json:"games"`
	Sessions []ExportSession `json:"sessions"`
}

// ExportPlayer 数据源玩家，pid 为上游权威ID
type ExportPlayer struct {
	PID  int64  `json:"pid"`
	Name string `json:"name"`
}

// ExportGame 单桌对局
type ExportGame struct {
	GID         int64          `json:"gid"`
	Played      string         `json:"played"` // YYYY-MM-DD
	Description string         `json:"description"`
	Players     []int64        `json:"players"`
	Results     []ExportResult `json:"results"`
}

// ExportResult 单个座位成绩，除 result 外均可缺省
type ExportResult struct {
	Player   int64    `json:"player"`
	Result   *float64 `json:"result"`
	Seat     string   `json:"seat"`
	Uma      *float64 `json:"uma"`
	Position *int     `json:"position"`
	Penalty  *float64 `json:"penalty"`
	Total    *float64 `json:"total"`
}

// ExportSession 比赛日（当前未使用，保留结构以便完整解析）
type ExportSession struct {
	SID   int64   `json:"sid"`
	Name  string  `json:"name"`
	Group string  `json:"group"`
	Date  string  `json:"date"`
	Games []int64 `json:"games"`
}

// Roster pid -> 玩家名
func (c *ExportCollection) Roster() map[int64]string {
	roster := make(map[int64]string, len(c.Players))
	for _, p := range c.Players {
		roster[p.PID] = p.Name
	}
	return roster
}
