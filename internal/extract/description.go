package extract

import (
	"regexp"
	"strconv"
)

var (
	// 兼容 "Season X: Table Y" 与 "Season X: GroupA: ...: Table Y"
	seasonTablePattern = regexp.MustCompile(`Season (\d+)(?:: [^:]+)*: Table (\d+)`)
	seasonOnlyPattern  = regexp.MustCompile(`Season (\d+)`)
)

// ParseSeasonTable 从描述文本解析赛季号与桌号。
// 完整格式不匹配时退化为只取 "Season N"，桌号用文档自带的 fallbackTable；连赛季都没有则赛季为 0
func ParseSeasonTable(desc string, fallbackTable int) (season, table int) {
	if m := seasonTablePattern.FindStringSubmatch(desc); m != nil {
		season = atoiOr(m[1], 0)
		table = atoiOr(m[2], fallbackTable)
		return season, table
	}
	if m := seasonOnlyPattern.FindStringSubmatch(desc); m != nil {
		season = atoiOr(m[1], 0)
	}
	return season, fallbackTable
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
