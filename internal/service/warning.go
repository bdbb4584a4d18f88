package service

import "fmt"

// 警告类型
const (
	WarnUnknownPlayer   = "unknown_player"
	WarnMalformedSeat   = "malformed_seat"
	WarnPlayerCount     = "wrong_player_count"
	WarnDuplicateSeat   = "duplicate_seat"
	WarnMissingSeat     = "missing_seat"
	WarnDuplicatePlayer = "duplicate_player"
	WarnExtraction      = "extraction_failed"
	WarnIdentity        = "identity_unresolved"
	WarnPersistence     = "persistence_failed"
	WarnPageUnavailable = "page_unavailable"
)

// Warning 同步中的非致命问题，随运行记录一起保存
type Warning struct {
	Kind     string `json:"kind"`
	SourceID int64  `json:"source_id"`
	Seat     string `json:"seat,omitempty"`
	Player   string `json:"player,omitempty"`
	Message  string `json:"message"`
}

func newWarning(kind string, sourceID int64, format string, args ...interface{}) Warning {
	return Warning{Kind: kind, SourceID: sourceID, Message: fmt.Sprintf(format, args...)}
}
