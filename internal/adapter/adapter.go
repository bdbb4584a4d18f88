package adapter

import (
	"fmt"
	"sort"

	"LeagueSync/internal/config"
	"LeagueSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// Factory 数据源工厂函数签名
type Factory func(cfg *config.SourceConfig, fetcher *Fetcher, logger *logrus.Logger) interfaces.Feed

// 同步模式 -> 工厂函数，由各数据源包的 init 注册
var factoryRegistry = make(map[string]Factory)

// Register 供数据源包 init 调用
func Register(mode string, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("数据源%s的工厂函数不能为nil", mode))
	}
	if _, exists := factoryRegistry[mode]; exists {
		logrus.Warnf("数据源%s已注册，将覆盖原有实现", mode)
	}
	factoryRegistry[mode] = factory
}

// GetFactory 获取指定模式的工厂函数
func GetFactory(mode string) (Factory, bool) {
	factory, ok := factoryRegistry[mode]
	return factory, ok
}

// ListFactories 已注册的模式（排序后）
func ListFactories() []string {
	modes := make([]string, 0, len(factoryRegistry))
	for m := range factoryRegistry {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}
