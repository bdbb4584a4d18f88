package interfaces

import (
	"context"

	"LeagueSync/internal/model"
)

// TableFeed 分页数据源：按游标逐桌拉取原始 HTML 文档
type TableFeed interface {
	Feed
	FetchTable(ctx context.Context, cursor int) ([]byte, error)
}

// ExportFeed 整包数据源：一次拉取 data.json
type ExportFeed interface {
	Feed
	FetchExport(ctx context.Context) (*model.LeagueExport, error)
}

// Feed 所有数据源的公共部分
type Feed interface {
	GetName() string
}
