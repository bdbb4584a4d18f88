package service

import (
	"context"
	"errors"
	"testing"

	"LeagueSync/internal/config"
	"LeagueSync/internal/model"
	"LeagueSync/internal/repository"
)

func seededLeague(t *testing.T) *memStore {
	t.Helper()
	store := newReconcileStore()
	rc := NewReconciler(store, config.ResultPolicyUpsert, quietLogger())
	ctx := context.Background()
	if _, err := rc.Apply(ctx, season3Table7(), lineup); err != nil {
		t.Fatal(err)
	}
	rec := record(12,
		scored(model.SeatEast, "Erin", 30000, 1),
		scored(model.SeatSouth, "Alice", 25000, 2),
	)
	rec.SeasonNum, rec.TableNum = 4, 1
	if _, err := rc.Apply(ctx, rec, lineup); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestLeagueServiceSeasonsAndPlayers(t *testing.T) {
	svc := NewLeagueService(seededLeague(t), quietLogger())
	ctx := context.Background()

	seasons, err := svc.ListSeasons(ctx)
	if err != nil || len(seasons) != 2 || seasons[0] != 3 || seasons[1] != 4 {
		t.Fatalf("seasons = %v, %v", seasons, err)
	}
	season := 4
	names, err := svc.ListPlayers(ctx, &season)
	if err != nil || len(names) != 2 || names[0] != "Alice" || names[1] != "Erin" {
		t.Fatalf("season 4 players = %v, %v", names, err)
	}
	all, _ := svc.ListPlayers(ctx, nil)
	if len(all) != 5 {
		t.Errorf("all players = %v", all)
	}
}

func TestLeagueServicePlayerMatches(t *testing.T) {
	svc := NewLeagueService(seededLeague(t), quietLogger())
	ctx := context.Background()

	views, err := svc.PlayerMatches(ctx, "Alice", nil)
	if err != nil {
		t.Fatalf("PlayerMatches: %v", err)
	}
	if len(views) != 2 || views[0].SeasonNum != 3 || views[1].SeasonNum != 4 {
		t.Fatalf("views = %+v", views)
	}
	first := views[0].Results
	if len(first) != 4 {
		t.Fatalf("results = %+v", first)
	}
	order := []model.Seat{model.SeatEast, model.SeatSouth, model.SeatWest, model.SeatNorth}
	names := []string{"Alice", "Bob", "Carol", "Dave"}
	for i, r := range first {
		if r.Seat != order[i] || r.PlayerName != names[i] {
			t.Errorf("result %d = %+v", i, r)
		}
	}

	season := 4
	only, _ := svc.PlayerMatches(ctx, "Alice", &season)
	if len(only) != 1 || only[0].Results[0].PlayerName != "Erin" {
		t.Errorf("season filter = %+v", only)
	}

	if _, err := svc.PlayerMatches(ctx, "Nobody", nil); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown player err = %v", err)
	}
}

func TestBuildMatchViewsUnknownSeatLast(t *testing.T) {
	east := int64(1)
	games := []*model.Game{{ID: 10, SeasonNum: 1, TableNum: 1, E: &east}}
	results := []*model.Result{
		{TableID: 10, PlayerID: 2, Score: 1},
		{TableID: 10, PlayerID: 1, Score: 2},
	}
	views := buildMatchViews(games, results, map[int64]string{1: "Alice"})
	got := views[0].Results
	if got[0].PlayerID != 1 || got[0].Seat != model.SeatEast || got[1].Seat != model.SeatUnknown {
		t.Errorf("results = %+v", got)
	}
}
