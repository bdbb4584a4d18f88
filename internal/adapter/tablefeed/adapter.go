package tablefeed

import (
	"context"
	"fmt"
	"strings"

	"LeagueSync/internal/adapter"
	"LeagueSync/internal/config"
	"LeagueSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

func init() {
	adapter.Register(config.ModeTable, func(cfg *config.SourceConfig, fetcher *adapter.Fetcher, logger *logrus.Logger) interfaces.Feed {
		return NewTableAdapter(cfg, fetcher, logger)
	})
}

// Adapter 逐桌 HTML 页面：<table_base_url><cursor>/
type Adapter struct {
	baseURL string
	fetcher *adapter.Fetcher
	logger  *logrus.Logger
}

func NewTableAdapter(cfg *config.SourceConfig, fetcher *adapter.Fetcher, logger *logrus.Logger) *Adapter {
	base := cfg.TableBaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Adapter{baseURL: base, fetcher: fetcher, logger: logger}
}

func (a *Adapter) GetName() string {
	return config.ModeTable
}

// FetchTable 拉取第 cursor 桌的原始页面
func (a *Adapter) FetchTable(ctx context.Context, cursor int) ([]byte, error) {
	url := fmt.Sprintf("%s%d/", a.baseURL, cursor)
	body, err := a.fetcher.Get(ctx, "fetch table", url)
	if err != nil {
		return nil, err
	}
	a.logger.WithFields(logrus.Fields{"cursor": cursor, "bytes": len(body)}).Debug("拉取对局页面成功")
	return body, nil
}
