package service

import (
	"context"
	"testing"

	"LeagueSync/internal/config"
	"LeagueSync/internal/model"
)

func int64Ptr(v int64) *int64 { return &v }

func record(sourceID int64, entries ...model.SeatEntry) *model.MatchRecord {
	return &model.MatchRecord{SourceID: sourceID, SeasonNum: 3, TableNum: 7, Processed: true, Entries: entries}
}

func entry(seat model.Seat, name string) model.SeatEntry {
	return model.SeatEntry{RawSeat: "[" + string(seat) + "]", Seat: seat, PlayerName: name}
}

func refEntry(seat model.Seat, name string, pid int64) model.SeatEntry {
	e := entry(seat, name)
	e.PlayerRef = int64Ptr(pid)
	return e
}

// named 按名字取ID，同名多 pid 时返回任意一个
func (ids PlayerIDs) named(name string) int64 {
	for key, id := range ids {
		if key.name == name {
			return id
		}
	}
	return 0
}

func newResolver(t *testing.T, store *memStore) *IdentityResolver {
	t.Helper()
	r, err := NewIdentityResolver(context.Background(), store, quietLogger())
	if err != nil {
		t.Fatalf("NewIdentityResolver: %v", err)
	}
	return r
}

func TestResolveIncrementalReusesByName(t *testing.T) {
	store := newMemStore()
	store.addPlayer(1, "Alice")
	r := newResolver(t, store)

	ids, warnings := r.Resolve(context.Background(), record(0,
		entry(model.SeatEast, "Alice"),
		entry(model.SeatSouth, "Bob"),
	))
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if ids.named("Alice") != 1 {
		t.Errorf("Alice = %d, want 1", ids.named("Alice"))
	}
	if ids.named("Bob") == 0 || ids.named("Bob") == 1 {
		t.Errorf("Bob = %d, want fresh id", ids.named("Bob"))
	}
	if r.Created() != 1 || r.Renamed() != 0 {
		t.Errorf("created=%d renamed=%d", r.Created(), r.Renamed())
	}
}

func TestResolveBulkRenamePropagates(t *testing.T) {
	store := newMemStore()
	store.addPlayer(7, "Bobby")
	r := newResolver(t, store)

	ids, _ := r.Resolve(context.Background(), record(1, refEntry(model.SeatEast, "Bob", 7)))
	if ids.named("Bob") != 7 {
		t.Fatalf("Bob = %d, want 7", ids.named("Bob"))
	}
	if got := store.players[7].Name; got != "Bob" {
		t.Fatalf("stored name = %q, want Bob", got)
	}
	if r.Renamed() != 1 || r.Created() != 0 {
		t.Errorf("created=%d renamed=%d", r.Created(), r.Renamed())
	}
	if store.calls["CreatePlayer"]+store.calls["CreatePlayerWithID"] != 0 {
		t.Error("rename must not create players")
	}
}

func TestResolveBulkInsertsWithSourceID(t *testing.T) {
	store := newMemStore()
	r := newResolver(t, store)

	ids, _ := r.Resolve(context.Background(), record(1, refEntry(model.SeatEast, "Carol", 42)))
	if ids.named("Carol") != 42 {
		t.Fatalf("Carol = %d, want 42", ids.named("Carol"))
	}
	if store.calls["CreatePlayerWithID"] != 1 || store.calls["CreatePlayer"] != 0 {
		t.Errorf("calls = %v", store.calls)
	}
}

func TestResolveDuplicateKeyFallsBackToRename(t *testing.T) {
	store := newMemStore()
	r := newResolver(t, store)
	// 快照之后出现的玩家，InsertWithID 会冲突
	store.addPlayer(5, "Old Name")

	ids, warnings := r.Resolve(context.Background(), record(1, refEntry(model.SeatEast, "New Name", 5)))
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if ids.named("New Name") != 5 {
		t.Fatalf("id = %d, want 5", ids.named("New Name"))
	}
	if store.players[5].Name != "New Name" {
		t.Errorf("stored name = %q", store.players[5].Name)
	}
	if store.calls["CreatePlayerWithID"] != 1 || store.calls["UpdatePlayer"] != 1 || store.calls["CreatePlayer"] != 0 {
		t.Errorf("calls = %v", store.calls)
	}
}

func TestResolveInsertFailureFallsBackToAutoAssign(t *testing.T) {
	store := newMemStore()
	store.failCreatePlayerWith = errBoom
	r := newResolver(t, store)

	ids, _ := r.Resolve(context.Background(), record(1, refEntry(model.SeatEast, "Dave", 9)))
	if ids.named("Dave") == 0 || ids.named("Dave") == 9 {
		t.Fatalf("Dave = %d, want auto-assigned id", ids.named("Dave"))
	}
	if store.calls["CreatePlayer"] != 1 {
		t.Errorf("calls = %v", store.calls)
	}
}

func TestResolveCachesAcrossRecords(t *testing.T) {
	store := newMemStore()
	r := newResolver(t, store)
	ctx := context.Background()

	first, _ := r.Resolve(ctx, record(0, entry(model.SeatEast, "Erin")))
	second, _ := r.Resolve(ctx, record(1, entry(model.SeatWest, "Erin")))
	if first.named("Erin") != second.named("Erin") {
		t.Fatalf("ids differ: %d vs %d", first.named("Erin"), second.named("Erin"))
	}
	if store.calls["CreatePlayer"] != 1 {
		t.Errorf("CreatePlayer called %d times", store.calls["CreatePlayer"])
	}
	if store.calls["ListPlayers"] != 1 {
		t.Errorf("ListPlayers called %d times", store.calls["ListPlayers"])
	}
}

func TestResolveSkipsUnknownNameAndSeat(t *testing.T) {
	store := newMemStore()
	r := newResolver(t, store)

	nameless := refEntry(model.SeatSouth, "", 99)
	badSeat := entry(model.SeatUnknown, "Frank")
	ids, warnings := r.Resolve(context.Background(), record(4, entry(model.SeatEast, "Alice"), nameless, badSeat))

	if ids.named("Frank") != 0 {
		t.Error("player with unrecognized seat should not be resolved")
	}
	if len(ids) != 1 {
		t.Errorf("ids = %v", ids)
	}
	if len(warnings) != 1 || warnings[0].Kind != WarnUnknownPlayer || warnings[0].SourceID != 4 {
		t.Errorf("warnings = %+v", warnings)
	}
}

func TestSyncRoster(t *testing.T) {
	store := newMemStore()
	store.addPlayer(1, "Alice")
	store.addPlayer(2, "Robert")
	r := newResolver(t, store)

	warnings := r.SyncRoster(context.Background(), []model.ExportPlayer{
		{PID: 1, Name: "Alice"},
		{PID: 2, Name: "Bob"},
		{PID: 3, Name: "Carol"},
		{PID: 4, Name: ""},
	})
	if len(warnings) != 1 || warnings[0].Kind != WarnUnknownPlayer {
		t.Fatalf("warnings = %+v", warnings)
	}
	if store.players[2].Name != "Bob" || store.players[3] == nil || store.players[3].Name != "Carol" {
		t.Errorf("players = %v", store.players)
	}
	if r.Created() != 1 || r.Renamed() != 1 {
		t.Errorf("created=%d renamed=%d", r.Created(), r.Renamed())
	}

	// 名单同步之后，对局里的玩家直接命中
	before := store.writes()
	ids, _ := r.Resolve(context.Background(), record(1, refEntry(model.SeatEast, "Bob", 2)))
	if ids.named("Bob") != 2 || store.writes() != before {
		t.Errorf("Bob = %d, writes %d -> %d", ids.named("Bob"), before, store.writes())
	}
}

func TestResolveKeepsSameNameWithDifferentPIDs(t *testing.T) {
	store := newMemStore()
	store.addPlayer(3, "Sam")
	r := newResolver(t, store)
	rec := record(6, refEntry(model.SeatEast, "Sam", 3), refEntry(model.SeatSouth, "Sam", 11))

	ids, warnings := r.Resolve(context.Background(), rec)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	first, ok1 := ids.Of(rec.Entries[0])
	second, ok2 := ids.Of(rec.Entries[1])
	if !ok1 || !ok2 || first != 3 || second != 11 {
		t.Fatalf("ids = %d/%v, %d/%v; want 3 and 11", first, ok1, second, ok2)
	}

	out, err := NewReconciler(store, config.ResultPolicyUpsert, quietLogger()).Apply(context.Background(), rec, ids)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.ResultsCreated != 2 || out.SeatsSkipped != 0 {
		t.Errorf("outcome = %+v", out)
	}
}
