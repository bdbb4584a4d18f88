package service

import (
	"context"
	"errors"
	"fmt"

	"LeagueSync/internal/config"
	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/model"
	"LeagueSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// PersistenceError 对局查询或创建失败，该条记录不写任何成绩
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s失败: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ReconcileOutcome 一条记录的写入结果
type ReconcileOutcome struct {
	GameID         int64
	GameCreated    bool
	ResultsCreated int
	ResultsUpdated int
	ResultsDeleted int64
	SeatsSkipped   int
	Warnings       []Warning
}

// seatAssignment 通过筛选、可以写入的座位
type seatAssignment struct {
	entry    model.SeatEntry
	playerID int64
}

// Reconciler 把一条 MatchRecord 写成对局 + 成绩
type Reconciler struct {
	store  interfaces.LeagueStore
	policy string
	logger *logrus.Logger
}

func NewReconciler(store interfaces.LeagueStore, policy string, logger *logrus.Logger) *Reconciler {
	if policy == "" {
		policy = config.ResultPolicyUpsert
	}
	return &Reconciler{store: store, policy: policy, logger: logger}
}

// Apply 按 (season_num, table_num) 找到或创建对局，再逐座位写成绩
func (r *Reconciler) Apply(ctx context.Context, rec *model.MatchRecord, ids PlayerIDs) (*ReconcileOutcome, error) {
	out := &ReconcileOutcome{}
	seats := r.assignSeats(rec, ids, out)
	log := r.logger.WithFields(logrus.Fields{
		"source_id": rec.SourceID,
		"season":    rec.SeasonNum,
		"table":     rec.TableNum,
	})

	game := &model.Game{
		SeasonNum: rec.SeasonNum,
		TableNum:  rec.TableNum,
		GameTime:  rec.GameTime,
		Processed: rec.Processed,
	}
	for _, s := range seats {
		game.SetSeat(s.entry.Seat, s.playerID)
	}

	existing, err := r.store.GetGameBySeasonAndTable(ctx, rec.SeasonNum, rec.TableNum)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		id, err := r.store.CreateGame(ctx, game)
		if err != nil {
			return out, &PersistenceError{Op: "创建对局", Err: err}
		}
		out.GameID = id
		out.GameCreated = true
		log.WithField("game_id", id).Info("新建对局")
	case err != nil:
		return out, &PersistenceError{Op: "查询对局", Err: err}
	default:
		game.ID = existing.ID
		out.GameID = existing.ID
		if err := r.store.UpdateGame(ctx, game); err != nil {
			log.WithError(err).WithField("game_id", existing.ID).Warn("更新对局失败，继续写入成绩")
			out.Warnings = append(out.Warnings, newWarning(WarnPersistence, rec.SourceID, "更新对局 %d 失败: %v", existing.ID, err))
		}
		if r.policy == config.ResultPolicyReplace {
			n, err := r.store.DeleteResultsByTable(ctx, existing.ID)
			if err != nil {
				return out, &PersistenceError{Op: "删除旧成绩", Err: err}
			}
			out.ResultsDeleted = n
		}
	}

	// 新对局或 replace 策略下旧成绩已清空，直接插入
	insertOnly := out.GameCreated || r.policy == config.ResultPolicyReplace
	for _, s := range seats {
		if err := r.writeResult(ctx, out, s, insertOnly); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"player_id": s.playerID,
				"seat":      s.entry.Seat,
			}).Warn("写入成绩失败")
			w := newWarning(WarnPersistence, rec.SourceID, "写入成绩失败: %v", err)
			w.Seat = string(s.entry.Seat)
			w.Player = s.entry.PlayerName
			out.Warnings = append(out.Warnings, w)
		}
	}
	return out, nil
}

func (r *Reconciler) writeResult(ctx context.Context, out *ReconcileOutcome, s seatAssignment, insertOnly bool) error {
	result := &model.Result{
		TableID:  out.GameID,
		PlayerID: s.playerID,
		Score:    s.entry.Score,
		Position: s.entry.Position,
		Uma:      s.entry.Uma,
		Penalty:  s.entry.Penalty,
		Total:    s.entry.Total,
	}
	if !insertOnly {
		existing, err := r.store.GetResultByTableAndPlayer(ctx, out.GameID, s.playerID)
		switch {
		case err == nil:
			result.ID = existing.ID
			if err := r.store.UpdateResult(ctx, result); err != nil {
				return err
			}
			out.ResultsUpdated++
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}
	if err := r.store.CreateResult(ctx, result); err != nil {
		return err
	}
	out.ResultsCreated++
	return nil
}

// assignSeats 过滤掉无法写入的座位：未识别座位、身份未解析、重复座位、同一玩家重复出现（保留第一次）
func (r *Reconciler) assignSeats(rec *model.MatchRecord, ids PlayerIDs, out *ReconcileOutcome) []seatAssignment {
	seats := make([]seatAssignment, 0, len(rec.Entries))
	seatTaken := make(map[model.Seat]bool, len(model.Seats))
	playerSeated := make(map[int64]bool, len(rec.Entries))

	for _, e := range rec.Entries {
		if e.Seat == model.SeatUnknown {
			w := newWarning(WarnMalformedSeat, rec.SourceID, "玩家 %s 的座位无法识别: %q", e.PlayerName, e.RawSeat)
			w.Player = e.PlayerName
			out.Warnings = append(out.Warnings, w)
			out.SeatsSkipped++
			continue
		}
		if seatTaken[e.Seat] {
			w := newWarning(WarnDuplicateSeat, rec.SourceID, "座位 %s 被分配给多个玩家，忽略 %s", e.Seat, e.PlayerName)
			w.Seat = string(e.Seat)
			w.Player = e.PlayerName
			out.Warnings = append(out.Warnings, w)
			out.SeatsSkipped++
			continue
		}
		seatTaken[e.Seat] = true

		id, ok := ids.Of(e)
		if !ok || e.PlayerName == "" {
			// 身份解析阶段已记录警告，座位留空
			out.SeatsSkipped++
			continue
		}
		if playerSeated[id] {
			w := newWarning(WarnDuplicatePlayer, rec.SourceID, "玩家 %s 在同一桌出现多次，忽略座位 %s", e.PlayerName, e.Seat)
			w.Seat = string(e.Seat)
			w.Player = e.PlayerName
			out.Warnings = append(out.Warnings, w)
			out.SeatsSkipped++
			continue
		}
		playerSeated[id] = true
		seats = append(seats, seatAssignment{entry: e, playerID: id})
	}
	return seats
}
