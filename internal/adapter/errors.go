package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	// ErrUpstreamExhausted 分页数据源返回 502，视为数据已取完
	ErrUpstreamExhausted = errors.New("数据源已无更多数据")
	// ErrPageUnavailable 其他非 2xx 状态，跳过该页
	ErrPageUnavailable = errors.New("数据源页面不可用")
)

// TransportError 拉取失败的详细信息。Retryable 为 true 表示超时或连接失败，可稍后重试同一页
type TransportError struct {
	Op        string
	URL       string
	Status    int
	Retryable bool
	Err       error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable 判断错误链上是否有可重试的 TransportError
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Retryable
}

// statusError 按 HTTP 状态码归类
func statusError(op, url string, status int) error {
	if status == 502 {
		return &TransportError{Op: op, URL: url, Status: status, Err: ErrUpstreamExhausted}
	}
	return &TransportError{Op: op, URL: url, Status: status, Err: ErrPageUnavailable}
}

// transportError 包装网络层错误；超时与建连失败可重试
func transportError(op, url string, err error) error {
	return &TransportError{Op: op, URL: url, Retryable: isTimeoutOrConnect(err), Err: err}
}

func isTimeoutOrConnect(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}
