package extract

import "fmt"

// ExtractionError 单个文档无法抽取，整条记录丢弃，不影响库内状态
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("抽取失败: %s", e.Reason)
}

func failf(format string, args ...any) error {
	return &ExtractionError{Reason: fmt.Sprintf(format, args...)}
}
