package service

import (
	"context"
	"errors"
	"fmt"

	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/metrics"
	"LeagueSync/internal/model"
	"LeagueSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// identityStrategy 身份解析策略，按 strategyOrder 依次尝试
type identityStrategy int

const (
	strategyReuseExisting identityStrategy = iota
	strategyRenameExisting
	strategyInsertWithID
	strategyAutoAssign
)

var strategyOrder = []identityStrategy{
	strategyReuseExisting,
	strategyRenameExisting,
	strategyInsertWithID,
	strategyAutoAssign,
}

func (s identityStrategy) String() string {
	switch s {
	case strategyReuseExisting:
		return "reuse_existing"
	case strategyRenameExisting:
		return "rename_existing"
	case strategyInsertWithID:
		return "insert_with_id"
	case strategyAutoAssign:
		return "auto_assign"
	}
	return "unknown"
}

type stepResult int

const (
	stepNext stepResult = iota
	stepResolved
	stepRestart
)

// identityAttempt 单个玩家的一次解析过程
type identityAttempt struct {
	name        string
	ref         *int64
	insertTried bool
	conflicted  bool // InsertWithID 撞上已存在的 ID
}

type identityKey struct {
	name   string
	ref    int64
	hasRef bool
}

func keyOf(name string, ref *int64) identityKey {
	key := identityKey{name: name}
	if ref != nil {
		key.ref, key.hasRef = *ref, true
	}
	return key
}

// PlayerIDs 一条记录内解析出的玩家ID，按名字加数据源 pid 区分同名玩家
type PlayerIDs map[identityKey]int64

// Of 座位条目对应的玩家ID
func (ids PlayerIDs) Of(e model.SeatEntry) (int64, bool) {
	id, ok := ids[keyOf(e.PlayerName, e.PlayerRef)]
	return id, ok
}

var errIdentityUnresolved = errors.New("所有身份策略均失败")

// IdentityResolver 把玩家名（及数据源 pid）映射为稳定的玩家ID。每次同步新建一个
type IdentityResolver struct {
	store  interfaces.LeagueStore
	logger *logrus.Logger

	byID   map[int64]string
	byName map[string]int64
	cache  map[identityKey]int64

	created int
	renamed int
}

// NewIdentityResolver 读取一次全量玩家作为本次同步的快照
func NewIdentityResolver(ctx context.Context, store interfaces.LeagueStore, logger *logrus.Logger) (*IdentityResolver, error) {
	players, err := store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取玩家列表失败: %w", err)
	}
	r := &IdentityResolver{
		store:  store,
		logger: logger,
		byID:   make(map[int64]string, len(players)),
		byName: make(map[string]int64, len(players)),
		cache:  make(map[identityKey]int64),
	}
	for _, p := range players {
		r.remember(p.ID, p.Name)
	}
	return r, nil
}

// Created 本次同步新建的玩家数
func (r *IdentityResolver) Created() int { return r.created }

// Renamed 本次同步改名的玩家数
func (r *IdentityResolver) Renamed() int { return r.renamed }

// SyncRoster 整包模式下先同步全部名单，改名与新建发生在处理对局之前
func (r *IdentityResolver) SyncRoster(ctx context.Context, players []model.ExportPlayer) []Warning {
	var warnings []Warning
	for _, p := range players {
		if p.Name == "" {
			warnings = append(warnings, newWarning(WarnUnknownPlayer, p.PID, "名单中玩家 %d 没有名字", p.PID))
			continue
		}
		pid := p.PID
		if _, err := r.resolveOne(ctx, p.Name, &pid); err != nil {
			w := newWarning(WarnIdentity, p.PID, "名单玩家 %s(%d) 身份解析失败: %v", p.Name, p.PID, err)
			w.Player = p.Name
			warnings = append(warnings, w)
		}
	}
	return warnings
}

// Resolve 解析一条记录中所有已识别座位的玩家。失败的玩家不出现在返回的 map 中
func (r *IdentityResolver) Resolve(ctx context.Context, rec *model.MatchRecord) (PlayerIDs, []Warning) {
	ids := make(PlayerIDs, len(rec.Entries))
	var warnings []Warning
	tried := make(map[identityKey]struct{}, len(rec.Entries))

	for _, e := range rec.Entries {
		if e.Seat == model.SeatUnknown {
			continue
		}
		if e.PlayerName == "" {
			w := newWarning(WarnUnknownPlayer, rec.SourceID, "座位 %s 的玩家无法识别%s", e.Seat, refSuffix(e.PlayerRef))
			w.Seat = string(e.Seat)
			warnings = append(warnings, w)
			continue
		}
		key := keyOf(e.PlayerName, e.PlayerRef)
		if _, ok := tried[key]; ok {
			continue
		}
		tried[key] = struct{}{}

		id, err := r.resolveOne(ctx, e.PlayerName, e.PlayerRef)
		if err != nil {
			w := newWarning(WarnIdentity, rec.SourceID, "玩家 %s 身份解析失败: %v", e.PlayerName, err)
			w.Seat = string(e.Seat)
			w.Player = e.PlayerName
			warnings = append(warnings, w)
			continue
		}
		ids[key] = id
	}
	return ids, warnings
}

func refSuffix(ref *int64) string {
	if ref == nil {
		return ""
	}
	return fmt.Sprintf("（pid %d）", *ref)
}

// resolveOne 按策略顺序解析；InsertWithID 冲突后从头再走一遍，此时 RenameExisting 可用
func (r *IdentityResolver) resolveOne(ctx context.Context, name string, ref *int64) (int64, error) {
	key := keyOf(name, ref)
	if id, ok := r.cache[key]; ok {
		return id, nil
	}

	a := &identityAttempt{name: name, ref: ref}
	for pass := 0; pass < len(strategyOrder); pass++ {
		restart := false
		for _, st := range strategyOrder {
			id, res := r.apply(ctx, st, a)
			if res == stepResolved {
				r.cache[key] = id
				return id, nil
			}
			if res == stepRestart {
				restart = true
				break
			}
		}
		if !restart {
			break
		}
	}
	return 0, errIdentityUnresolved
}

func (r *IdentityResolver) apply(ctx context.Context, st identityStrategy, a *identityAttempt) (int64, stepResult) {
	log := r.logger.WithFields(logrus.Fields{"player": a.name, "strategy": st.String()})
	if a.ref != nil {
		log = log.WithField("pid", *a.ref)
	}

	switch st {
	case strategyReuseExisting:
		if a.ref != nil {
			if name, ok := r.byID[*a.ref]; ok && name == a.name {
				return *a.ref, stepResolved
			}
			return 0, stepNext
		}
		if id, ok := r.byName[a.name]; ok {
			return id, stepResolved
		}
		return 0, stepNext

	case strategyRenameExisting:
		if a.ref == nil {
			return 0, stepNext
		}
		oldName, known := r.byID[*a.ref]
		if !(known && oldName != a.name) && !a.conflicted {
			return 0, stepNext
		}
		if err := r.store.UpdatePlayer(ctx, *a.ref, a.name); err != nil {
			log.WithError(err).Warn("玩家改名失败")
			return 0, stepNext
		}
		r.forget(*a.ref)
		r.remember(*a.ref, a.name)
		r.renamed++
		metrics.PlayersChangedTotal.WithLabelValues("renamed").Inc()
		log.WithField("old_name", oldName).Info("玩家已改名")
		return *a.ref, stepResolved

	case strategyInsertWithID:
		if a.ref == nil || a.insertTried {
			return 0, stepNext
		}
		if _, known := r.byID[*a.ref]; known {
			return 0, stepNext
		}
		a.insertTried = true
		id, err := r.store.CreatePlayerWithID(ctx, *a.ref, a.name)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				log.Info("玩家ID已存在，转为改名")
				a.conflicted = true
				return 0, stepRestart
			}
			log.WithError(err).Warn("按数据源ID创建玩家失败")
			return 0, stepNext
		}
		r.remember(id, a.name)
		r.created++
		metrics.PlayersChangedTotal.WithLabelValues("created").Inc()
		log.Info("新建玩家（沿用数据源ID）")
		return id, stepResolved

	case strategyAutoAssign:
		id, err := r.store.CreatePlayer(ctx, a.name)
		if err != nil {
			log.WithError(err).Warn("创建玩家失败")
			return 0, stepNext
		}
		r.remember(id, a.name)
		r.created++
		metrics.PlayersChangedTotal.WithLabelValues("created").Inc()
		log.WithField("id", id).Info("新建玩家")
		return id, stepResolved
	}
	return 0, stepNext
}

func (r *IdentityResolver) remember(id int64, name string) {
	r.byID[id] = name
	if cur, ok := r.byName[name]; !ok || id < cur {
		r.byName[name] = id
	}
}

func (r *IdentityResolver) forget(id int64) {
	for k, v := range r.cache {
		if v == id {
			delete(r.cache, k)
		}
	}
	name, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	if r.byName[name] == id {
		delete(r.byName, name)
		for otherID, other := range r.byID {
			if other == name {
				r.remember(otherID, other)
			}
		}
	}
}
