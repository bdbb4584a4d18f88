package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"LeagueSync/internal/metrics"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const maxBodySize = 32 << 20

// Fetcher 带熔断的 GET。502 与其他非 2xx 不计为失败，只有网络层错误会让熔断器打开
type Fetcher struct {
	name   string
	client *http.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
	logger *logrus.Logger
}

// FetcherOption 调整熔断策略
type FetcherOption func(*fetcherOptions)

type fetcherOptions struct {
	ignoreRetryable bool
}

// IgnoreRetryable 超时与建连失败不计入熔断，由调用方按固定间隔重试。分页模式使用
func IgnoreRetryable() FetcherOption {
	return func(o *fetcherOptions) { o.ignoreRetryable = true }
}

// NewFetcher 连续 5 次网络失败后熔断 1 分钟
func NewFetcher(name string, client *http.Client, logger *logrus.Logger, opts ...FetcherOption) *Fetcher {
	var o fetcherOptions
	for _, opt := range opts {
		opt(&o)
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if o.ignoreRetryable && IsRetryable(err) {
				return true
			}
			return err == nil || errors.Is(err, ErrPageUnavailable) || errors.Is(err, ErrUpstreamExhausted)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("数据源熔断器状态变化")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return &Fetcher{name: name, client: client, cb: cb, logger: logger}
}

// Get 拉取 url 的完整响应体。错误均为 *TransportError
func (f *Fetcher) Get(ctx context.Context, op, url string) ([]byte, error) {
	body, err := f.cb.Execute(func() ([]byte, error) {
		return f.do(ctx, op, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.FetchRequestsTotal.WithLabelValues(f.name, "rejected").Inc()
			return nil, &TransportError{Op: op, URL: url, Err: err}
		}
		metrics.FetchRequestsTotal.WithLabelValues(f.name, fetchResult(err)).Inc()
		return nil, err
	}
	metrics.FetchRequestsTotal.WithLabelValues(f.name, "ok").Inc()
	return body, nil
}

func (f *Fetcher) do(ctx context.Context, op, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Op: op, URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, transportError(op, url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.WithError(err).WithField("url", url).Debug("关闭响应体失败")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, statusError(op, url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, transportError(op, url, fmt.Errorf("读取响应体失败: %w", err))
	}
	return body, nil
}

func fetchResult(err error) string {
	switch {
	case errors.Is(err, ErrUpstreamExhausted):
		return "exhausted"
	case errors.Is(err, ErrPageUnavailable):
		return "unavailable"
	case IsRetryable(err):
		return "retryable"
	default:
		return "error"
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
