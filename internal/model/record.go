package model

import "time"

// Seat 四个固定座位
type Seat string

const (
	SeatEast    Seat = "E"
	SeatSouth   Seat = "S"
	SeatWest    Seat = "W"
	SeatNorth   Seat = "N"
	SeatUnknown Seat = ""
)

// Seats 按东南西北顺序
var Seats = []Seat{SeatEast, SeatSouth, SeatWest, SeatNorth}

// SeatEntry 一条座位成绩（抽取后的标准化结构）
type SeatEntry struct {
	RawSeat    string // 原始座位文本，如 "[E]"
	Seat       Seat   // 标准化座位，无法识别时为 SeatUnknown
	PlayerName string
	PlayerRef  *int64 // 数据源自带的玩家ID（仅 export 模式）
	Score      float64
	Position   int
	Uma        float64
	Penalty    float64
	Total      float64
}

// MatchRecord 一条远端记录抽取后的结果，只在一次流水线内存在
type MatchRecord struct {
	SourceID    int64 // 文档ID：export 模式为 gid，分页模式为游标
	SeasonNum   int
	TableNum    int
	Description string
	GameTime    *time.Time
	Processed   bool
	Entries     []SeatEntry
}
