package export

import (
	"context"
	"fmt"

	"LeagueSync/internal/adapter"
	"LeagueSync/internal/config"
	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/model"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

func init() {
	adapter.Register(config.ModeExport, func(cfg *config.SourceConfig, fetcher *adapter.Fetcher, logger *logrus.Logger) interfaces.Feed {
		return NewExportAdapter(cfg, fetcher, logger)
	})
}

// Adapter 整包 data.json 数据源
type Adapter struct {
	url     string
	fetcher *adapter.Fetcher
	logger  *logrus.Logger
}

func NewExportAdapter(cfg *config.SourceConfig, fetcher *adapter.Fetcher, logger *logrus.Logger) *Adapter {
	return &Adapter{url: cfg.ExportURL, fetcher: fetcher, logger: logger}
}

func (a *Adapter) GetName() string {
	return config.ModeExport
}

// FetchExport 拉取并解析 data.json，解析失败时整次同步终止
func (a *Adapter) FetchExport(ctx context.Context) (*model.LeagueExport, error) {
	body, err := a.fetcher.Get(ctx, "fetch export", a.url)
	if err != nil {
		return nil, err
	}
	var export model.LeagueExport
	if err := json.Unmarshal(body, &export); err != nil {
		return nil, fmt.Errorf("解析导出数据失败: %w", err)
	}
	a.logger.WithFields(logrus.Fields{
		"players": len(export.Collection.Players),
		"games":   len(export.Collection.Games),
	}).Info("拉取导出数据成功")
	return &export, nil
}
