// Package decoder 把表格文件的第一个工作表解析为按表头键控的行.
//
// 规则：
//   - 第一行非空行为表头，其后的每个非空行成为一条记录；
//   - 数字为 number，日期格式的单元格为 UTC 日期，共享/内联字符串保持字符串，布尔值为 "TRUE"/"FALSE"；
//   - 空白表头依次命名为 __EMPTY、__EMPTY_1 …；重名表头由后出现的列覆盖；
//   - 行尾缺失的单元格补为空字符串，所有行拥有相同的列集合；
//   - 空工作表得到零行而不是错误，损坏的内容返回 errs.KindDecode.
package decoder

import (
	"fmt"
	"strings"

	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// EmptyHeader 空白表头的列名前缀.
const EmptyHeader = "__EMPTY"

// gridCell 读取阶段的单元格：显示文本用于表头，typed 用于数据.
type gridCell struct {
	text  string
	typed types.Cell
}

// sheetReader 把原始字节读成第一个工作表的网格.
type sheetReader func(data []byte) (sheet string, grid [][]gridCell, err error)

var readers = map[types.Format]sheetReader{
	types.FormatXLSX: readXLSX,
	types.FormatXLS:  readXLS,
}

// Decode 同步解析，无副作用.
func Decode(data []byte, format types.Format) (table *types.Table, err error) {
	read, ok := readers[format]
	if !ok {
		return nil, errs.Decode(nil, fmt.Sprintf("unsupported spreadsheet format %q", format))
	}

	// 第三方解析器遇到畸形输入可能 panic
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = errs.Decode(fmt.Errorf("%v", r), "failed to parse spreadsheet")
		}
	}()

	sheet, grid, rerr := read(data)
	if rerr != nil {
		return nil, errs.Decode(rerr, "failed to parse spreadsheet")
	}

	return buildTable(sheet, grid), nil
}

// buildTable 由网格生成表头和行.
func buildTable(sheet string, grid [][]gridCell) *types.Table {
	table := &types.Table{Sheet: sheet, Columns: []string{}, Rows: []types.Row{}}

	hdr := -1

	width := 0
	for i, line := range grid {
		if hdr < 0 && !blankLine(line) {
			hdr = i
		}

		if hdr >= 0 && len(line) > width {
			width = len(line)
		}
	}

	if hdr < 0 {
		return table
	}

	names := headerNames(grid[hdr], width)

	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}

		seen[n] = struct{}{}
		table.Columns = append(table.Columns, n)
	}

	for _, line := range grid[hdr+1:] {
		if blankLine(line) {
			continue
		}

		row := make(types.Row, len(table.Columns))
		for j, name := range names {
			cell := types.StringCell("")
			if j < len(line) {
				cell = line[j].typed
			}

			row[name] = cell
		}

		table.Rows = append(table.Rows, row)
	}

	return table
}

// headerNames 表头文本，空白的按出现顺序编号.
func headerNames(line []gridCell, width int) []string {
	names := make([]string, width)
	empties := 0

	for j := range width {
		text := ""
		if j < len(line) {
			text = line[j].text
		}

		if strings.TrimSpace(text) != "" {
			names[j] = text
			continue
		}

		if empties == 0 {
			names[j] = EmptyHeader
		} else {
			names[j] = fmt.Sprintf("%s_%d", EmptyHeader, empties)
		}

		empties++
	}

	return names
}

func blankLine(line []gridCell) bool {
	for _, c := range line {
		if !c.typed.IsEmpty() || strings.TrimSpace(c.text) != "" {
			return false
		}
	}

	return true
}
