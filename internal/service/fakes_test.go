package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"LeagueSync/internal/adapter"
	"LeagueSync/internal/model"
	"LeagueSync/internal/repository"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// memStore 内存版存储，约束与 postgres 表一致：(season_num, table_num) 与 (table_id, player_id) 唯一
type memStore struct {
	mu      sync.Mutex
	players map[int64]*model.Player
	games   map[int64]*model.Game
	results map[int64]*model.Result
	seq     struct{ player, game, result int64 }

	calls map[string]int

	failCreateGame       error
	failUpdateGame       error
	failCreatePlayerWith error
	panicOnList          bool
}

func newMemStore() *memStore {
	return &memStore{
		players: make(map[int64]*model.Player),
		games:   make(map[int64]*model.Game),
		results: make(map[int64]*model.Result),
		calls:   make(map[string]int),
	}
}

func (m *memStore) call(name string) {
	m.calls[name]++
}

func (m *memStore) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for name, c := range m.calls {
		if strings.HasPrefix(name, "Create") || strings.HasPrefix(name, "Update") || strings.HasPrefix(name, "Delete") {
			n += c
		}
	}
	return n
}

func (m *memStore) addPlayer(id int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[id] = &model.Player{ID: id, Name: name}
	if id > m.seq.player {
		m.seq.player = id
	}
}

func (m *memStore) ListPlayers(_ context.Context) ([]*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("ListPlayers")
	if m.panicOnList {
		panic("list players exploded")
	}
	out := make([]*model.Player, 0, len(m.players))
	for _, p := range m.players {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CreatePlayer(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("CreatePlayer")
	m.seq.player++
	m.players[m.seq.player] = &model.Player{ID: m.seq.player, Name: name}
	return m.seq.player, nil
}

func (m *memStore) CreatePlayerWithID(_ context.Context, id int64, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("CreatePlayerWithID")
	if m.failCreatePlayerWith != nil {
		return 0, m.failCreatePlayerWith
	}
	if _, ok := m.players[id]; ok {
		return 0, fmt.Errorf("%w: league_players_pkey", repository.ErrDuplicateKey)
	}
	m.players[id] = &model.Player{ID: id, Name: name}
	if id > m.seq.player {
		m.seq.player = id
	}
	return id, nil
}

func (m *memStore) UpdatePlayer(_ context.Context, id int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("UpdatePlayer")
	p, ok := m.players[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Name = name
	return nil
}

func (m *memStore) GetGameBySeasonAndTable(_ context.Context, seasonNum, tableNum int) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.games {
		if g.SeasonNum == seasonNum && g.TableNum == tableNum {
			cp := *g
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) CreateGame(_ context.Context, game *model.Game) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("CreateGame")
	if m.failCreateGame != nil {
		return 0, m.failCreateGame
	}
	for _, g := range m.games {
		if g.SeasonNum == game.SeasonNum && g.TableNum == game.TableNum {
			return 0, repository.ErrDuplicateKey
		}
	}
	m.seq.game++
	cp := *game
	cp.ID = m.seq.game
	m.games[cp.ID] = &cp
	game.ID = cp.ID
	return cp.ID, nil
}

func (m *memStore) UpdateGame(_ context.Context, game *model.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("UpdateGame")
	if m.failUpdateGame != nil {
		return m.failUpdateGame
	}
	if _, ok := m.games[game.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *game
	m.games[game.ID] = &cp
	return nil
}

func (m *memStore) GetResultByTableAndPlayer(_ context.Context, tableID, playerID int64) (*model.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.results {
		if r.TableID == tableID && r.PlayerID == playerID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) CreateResult(_ context.Context, result *model.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("CreateResult")
	for _, r := range m.results {
		if r.TableID == result.TableID && r.PlayerID == result.PlayerID {
			return repository.ErrDuplicateKey
		}
	}
	m.seq.result++
	cp := *result
	cp.ID = m.seq.result
	m.results[cp.ID] = &cp
	result.ID = cp.ID
	return nil
}

func (m *memStore) UpdateResult(_ context.Context, result *model.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("UpdateResult")
	if _, ok := m.results[result.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *result
	m.results[result.ID] = &cp
	return nil
}

func (m *memStore) DeleteResultsByTable(_ context.Context, tableID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("DeleteResultsByTable")
	var n int64
	for id, r := range m.results {
		if r.TableID == tableID {
			delete(m.results, id)
			n++
		}
	}
	return n, nil
}

// ========== 查询接口 ==========

func (m *memStore) ListSeasons(_ context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[int]bool)
	for _, g := range m.games {
		set[g.SeasonNum] = true
	}
	seasons := make([]int, 0, len(set))
	for s := range set {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)
	return seasons, nil
}

func (m *memStore) ListPlayerNames(_ context.Context, season *int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[string]bool)
	if season == nil {
		for _, p := range m.players {
			set[p.Name] = true
		}
	} else {
		for _, r := range m.results {
			if g := m.games[r.TableID]; g != nil && g.SeasonNum == *season {
				set[m.players[r.PlayerID].Name] = true
			}
		}
	}
	return sortedKeys(set), nil
}

func (m *memStore) GetPlayerByName(_ context.Context, name string) (*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *model.Player
	for _, p := range m.players {
		if p.Name == name && (found == nil || p.ID < found.ID) {
			found = p
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *memStore) ListGamesByPlayer(_ context.Context, playerID int64, season *int) ([]*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var games []*model.Game
	for _, r := range m.results {
		if r.PlayerID != playerID {
			continue
		}
		g := m.games[r.TableID]
		if season != nil && g.SeasonNum != *season {
			continue
		}
		cp := *g
		games = append(games, &cp)
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].SeasonNum != games[j].SeasonNum {
			return games[i].SeasonNum < games[j].SeasonNum
		}
		return games[i].TableNum < games[j].TableNum
	})
	return games, nil
}

func (m *memStore) ListResultsByTables(_ context.Context, tableIDs []int64) ([]*model.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[int64]bool, len(tableIDs))
	for _, id := range tableIDs {
		want[id] = true
	}
	var out []*model.Result
	for _, r := range m.results {
		if want[r.TableID] {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListPlayersByIDs(_ context.Context, ids []int64) ([]*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Player
	for _, id := range ids {
		if p, ok := m.players[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// gameAt 按自然键取对局，测试断言用
func (m *memStore) gameAt(season, table int) *model.Game {
	g, err := m.GetGameBySeasonAndTable(context.Background(), season, table)
	if err != nil {
		return nil
	}
	return g
}

func (m *memStore) resultsFor(tableID int64) map[int64]*model.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]*model.Result)
	for _, r := range m.results {
		if r.TableID == tableID {
			cp := *r
			out[r.PlayerID] = &cp
		}
	}
	return out
}

func (m *memStore) playerID(name string) int64 {
	p, err := m.GetPlayerByName(context.Background(), name)
	if err != nil {
		return 0
	}
	return p.ID
}

// ========== 数据源 ==========

type pageResult struct {
	body []byte
	err  error
}

// fakeTableFeed 每个游标对应一串响应，依次返回；超出范围返回 502
type fakeTableFeed struct {
	mu    sync.Mutex
	pages map[int][]pageResult
	calls []int
}

func (f *fakeTableFeed) GetName() string { return "table" }

func (f *fakeTableFeed) FetchTable(_ context.Context, cursor int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cursor)
	queue, ok := f.pages[cursor]
	if !ok || len(queue) == 0 {
		return nil, &adapter.TransportError{Op: "fetch table", Status: 502, Err: adapter.ErrUpstreamExhausted}
	}
	next := queue[0]
	if len(queue) > 1 {
		f.pages[cursor] = queue[1:]
	}
	return next.body, next.err
}

type fakeExportFeed struct {
	export  *model.LeagueExport
	err     error
	started chan struct{}
	block   chan struct{}
}

func (f *fakeExportFeed) GetName() string { return "export" }

func (f *fakeExportFeed) FetchExport(ctx context.Context) (*model.LeagueExport, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.export, f.err
}

type fakeRunRecorder struct {
	started  []*model.SyncRun
	finished []*model.SyncRun
	err      error
}

func (f *fakeRunRecorder) StartRun(_ context.Context, run *model.SyncRun) error {
	f.started = append(f.started, run)
	return f.err
}

func (f *fakeRunRecorder) FinishRun(_ context.Context, run *model.SyncRun) error {
	cp := *run
	f.finished = append(f.finished, &cp)
	return f.err
}

var errBoom = errors.New("boom")
