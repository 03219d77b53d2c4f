package decoder

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"

	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// xlsDateLayouts 旧格式读出的日期文本已按工作簿格式渲染，按常见形态回解析.
var xlsDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006/1/2",
	"2006.01.02",
	"2006.01.02 15:04:05",
	"1/2/06",
	"1/2/2006",
	"1/2/06 15:04",
	"1/2/2006 15:04",
	"2-Jan-06",
	"02-Jan-06",
	"2-Jan-2006",
}

// readXLS 用 extrame/xls 读取 BIFF 工作簿的第一个工作表.
func readXLS(data []byte) (string, [][]gridCell, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", nil, fmt.Errorf("open workbook: %w", err)
	}

	if wb.NumSheets() == 0 {
		return "", nil, nil
	}

	ws := wb.GetSheet(0)
	if ws == nil {
		return "", nil, nil
	}

	grid := make([][]gridCell, 0, int(ws.MaxRow)+1)

	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}

		last := row.LastCol()
		if last < 0 {
			last = 0
		}

		line := make([]gridCell, last)
		for j := max(row.FirstCol(), 0); j < last; j++ {
			text := row.Col(j)
			line[j] = gridCell{text: text, typed: inferXLSCell(text)}
		}

		grid = append(grid, line)
	}

	return ws.Name, grid, nil
}

// inferXLSCell 旧格式只提供渲染后的文本，按内容推断类型；带前导零的编码保持字符串.
func inferXLSCell(text string) types.Cell {
	if text == "" {
		return types.StringCell("")
	}

	trimmed := strings.TrimSpace(text)

	if upper := strings.ToUpper(trimmed); upper == "TRUE" || upper == "FALSE" {
		return types.StringCell(upper)
	}

	if !hasLeadingZero(trimmed) {
		if num, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return types.NumberCell(num)
		}
	}

	for _, layout := range xlsDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return types.DateCell(t)
		}
	}

	return types.StringCell(text)
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}
