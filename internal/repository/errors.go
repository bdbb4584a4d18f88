package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 自然键/主键查询无结果
	ErrNotFound = errors.New("记录不存在")
	// ErrDuplicateKey 违反唯一约束（SQLSTATE 23505）
	ErrDuplicateKey = errors.New("主键或唯一键冲突")
)

const pgUniqueViolation = "23505"

// classify 把 gorm/pgx 的错误归类为仓储层错误，调用方只用 errors.Is 判断
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, pgErr.Message)
	}
	return err
}
