package service

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"LeagueSync/internal/adapter"
	"LeagueSync/internal/adapter/tablefeed"
	"LeagueSync/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// 分页模式经真实 Fetcher：连续建连失败不会触发熔断而终止同步
func TestRunTableRetriesThroughOutageWithRealFetcher(t *testing.T) {
	calls := 0
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls <= 6 {
			return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		}
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	})}
	logger := quietLogger()
	srcCfg := &config.SourceConfig{TableBaseURL: "http://league.test/table"}
	fetcher := adapter.NewFetcher("test-"+t.Name(), client, logger, adapter.IgnoreRetryable())
	feed := tablefeed.NewTableAdapter(srcCfg, fetcher, logger)

	cfg := testConfig(config.ModeTable)
	f := newSyncFixture(cfg, nil, nil)
	f.svc.tableFeed = feed

	msg, err := f.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v (calls=%d)", err, calls)
	}
	if calls != 7 {
		t.Errorf("transport calls = %d, want 7", calls)
	}
	if len(f.sleeps) != 6 {
		t.Errorf("sleeps = %d, want 6", len(f.sleeps))
	}
	if !strings.Contains(msg, "processed=0") {
		t.Errorf("summary = %q", msg)
	}
}
