package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRunsTotal 同步运行次数，status: succeeded/failed/busy
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_sync_runs_total",
			Help: "Total number of sync runs by mode and final status",
		},
		[]string{"mode", "status"},
	)

	// SyncRecordsTotal 记录级统计，outcome: processed/saved/failed
	SyncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_sync_records_total",
			Help: "Total number of remote records handled by outcome",
		},
		[]string{"outcome"},
	)

	// PlayersChangedTotal action: created/renamed
	PlayersChangedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_players_changed_total",
			Help: "Players created or renamed by identity resolution",
		},
		[]string{"action"},
	)

	SyncInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "league_sync_in_progress",
		Help: "1 while a sync run holds the single-flight guard",
	})

	SyncLastSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "league_sync_last_success_timestamp_seconds",
		Help: "Unix time of the last successful sync run",
	})

	SyncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "league_sync_run_duration_seconds",
			Help:    "Duration of sync runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"mode"},
	)

	// FetchRequestsTotal result: ok/unavailable/exhausted/retryable/error/rejected
	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_fetch_requests_total",
			Help: "Remote fetch attempts by source and result",
		},
		[]string{"source", "result"},
	)

	// CircuitBreakerState 0=closed 1=half-open 2=open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "league_fetch_circuit_breaker_state",
			Help: "Fetch circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)
