package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"LeagueSync/internal/model"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// 结果表列顺序：座位、玩家、点数、顺位、马点、罚分、合计
const (
	colSeat = iota
	colPlayer
	colScore
	colPosition
	colUma
	colPenalty
	colTotal
	tableColumns
)

// FromTablePage 把单桌 HTML 页面抽取为 MatchRecord。fallbackTable 为当前分页游标，
// 描述中没有桌号时作为桌号使用
func FromTablePage(page []byte, fallbackTable int) (*model.MatchRecord, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, failf("HTML 解析失败: %v", err)
	}

	descNode := findFirst(doc, func(n *html.Node) bool { return hasClass(n, "description") })
	if descNode == nil {
		descNode = findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.H1 })
	}
	if descNode == nil {
		return nil, failf("缺少描述字段")
	}
	desc := textContent(descNode)
	season, table := ParseSeasonTable(desc, fallbackTable)

	rec := &model.MatchRecord{
		SourceID:    int64(fallbackTable),
		SeasonNum:   season,
		TableNum:    table,
		Description: desc,
		Processed:   true,
	}
	if t := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Time }); t != nil {
		raw := attr(t, "datetime")
		if raw == "" {
			raw = textContent(t)
		}
		rec.GameTime = parseTime(raw)
	}

	scope := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Table && hasClass(n, "results") })
	if scope == nil {
		scope = doc
	}
	for i, cells := range dataRows(scope) {
		entry, err := entryFromCells(cells)
		if err != nil {
			return nil, failf("第 %d 行: %v", i+1, err)
		}
		rec.Entries = append(rec.Entries, entry)
	}
	if len(rec.Entries) == 0 {
		return nil, failf("页面中没有成绩行")
	}
	return rec, nil
}

func entryFromCells(cells []string) (model.SeatEntry, error) {
	var entry model.SeatEntry
	if len(cells) < tableColumns {
		return entry, fmt.Errorf("单元格数量 %d，少于 %d", len(cells), tableColumns)
	}
	if cells[colSeat] == "" {
		return entry, errors.New("缺少座位")
	}
	entry.RawSeat = cells[colSeat]
	entry.Seat = NormalizeSeat(cells[colSeat])
	entry.PlayerName = cells[colPlayer]

	var err error
	if entry.Score, err = parseNumber(cells[colScore], "点数"); err != nil {
		return entry, err
	}
	pos, err := parseNumber(cells[colPosition], "顺位")
	if err != nil {
		return entry, err
	}
	entry.Position = int(pos)
	if entry.Uma, err = parseNumber(cells[colUma], "马点"); err != nil {
		return entry, err
	}
	if cells[colPenalty] != "" {
		if entry.Penalty, err = parseNumber(cells[colPenalty], "罚分"); err != nil {
			return entry, err
		}
	}
	if entry.Total, err = parseNumber(cells[colTotal], "合计"); err != nil {
		return entry, err
	}
	return entry, nil
}

func parseNumber(raw, field string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "−", "-")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s 不是数字: %q", field, raw)
	}
	return v, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// dataRows 返回所有含 <td> 的行（表头行只有 <th>，跳过）
func dataRows(root *html.Node) [][]string {
	var rows [][]string
	walk(root, func(n *html.Node) {
		if n.DataAtom != atom.Tr {
			return
		}
		var cells []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Td {
				cells = append(cells, textContent(c))
			}
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
