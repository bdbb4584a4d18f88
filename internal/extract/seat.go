package extract

import (
	"strings"

	"LeagueSync/internal/model"
)

// NormalizeSeat 统一座位标签："[E]"、"e"、"EAST" 等都归一为 E/S/W/N，无法识别返回 SeatUnknown。
// 抽取、dry run 与对账三处共用，避免各自实现产生偏差
func NormalizeSeat(raw string) model.Seat {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "[]")
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "E", "EAST":
		return model.SeatEast
	case "S", "SOUTH":
		return model.SeatSouth
	case "W", "WEST":
		return model.SeatWest
	case "N", "NORTH":
		return model.SeatNorth
	}
	return model.SeatUnknown
}
