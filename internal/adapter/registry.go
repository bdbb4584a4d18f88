package adapter

import (
	"fmt"

	"LeagueSync/internal/config"
	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// SourceRegistry 按同步模式持有数据源实例
type SourceRegistry struct {
	feeds  map[string]interfaces.Feed
	logger *logrus.Logger
}

// NewSourceRegistry 为每个已注册的模式创建数据源，共用一个 HTTP 客户端，熔断器各自独立
func NewSourceRegistry(cfg *config.SourceConfig, logger *logrus.Logger) *SourceRegistry {
	r := &SourceRegistry{feeds: make(map[string]interfaces.Feed), logger: logger}
	client := httpclient.NewHTTPClient(cfg, logger)

	for _, mode := range ListFactories() {
		factory, _ := GetFactory(mode)
		var opts []FetcherOption
		if mode == config.ModeTable {
			// 分页模式的网络错误由同步流程按 retry_backoff 重试
			opts = append(opts, IgnoreRetryable())
		}
		feed := factory(cfg, NewFetcher("source-"+mode, client, logger, opts...), logger)
		if feed == nil {
			logger.WithField("mode", mode).Error("工厂函数返回nil数据源")
			continue
		}
		r.feeds[mode] = feed
	}
	logger.WithField("modes", ListFactories()).Info("数据源初始化完成")
	return r
}

// TableFeed 分页数据源
func (r *SourceRegistry) TableFeed() (interfaces.TableFeed, error) {
	feed, ok := r.feeds[config.ModeTable].(interfaces.TableFeed)
	if !ok {
		return nil, fmt.Errorf("数据源%s未初始化", config.ModeTable)
	}
	return feed, nil
}

// ExportFeed 整包数据源
func (r *SourceRegistry) ExportFeed() (interfaces.ExportFeed, error) {
	feed, ok := r.feeds[config.ModeExport].(interfaces.ExportFeed)
	if !ok {
		return nil, fmt.Errorf("数据源%s未初始化", config.ModeExport)
	}
	return feed, nil
}
