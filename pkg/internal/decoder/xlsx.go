package decoder

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// builtinDateFormats 内置数字格式中表示日期/时间的编号.
var builtinDateFormats = map[int]struct{}{
	14: {}, 15: {}, 16: {}, 17: {}, 18: {}, 19: {}, 20: {}, 21: {}, 22: {},
	27: {}, 28: {}, 29: {}, 30: {}, 31: {}, 32: {}, 33: {}, 34: {}, 35: {}, 36: {},
	45: {}, 46: {}, 47: {},
	50: {}, 51: {}, 52: {}, 53: {}, 54: {}, 55: {}, 56: {}, 57: {}, 58: {},
}

// readXLSX 用 excelize 读取第一个工作表.
func readXLSX(data []byte) (string, [][]gridCell, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, nil
	}

	sheet := sheets[0]

	display, err := f.GetRows(sheet)
	if err != nil {
		return "", nil, fmt.Errorf("read rows: %w", err)
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, fmt.Errorf("read raw rows: %w", err)
	}

	r := &xlsxCells{f: f, sheet: sheet, dateStyles: map[int]bool{}}
	if props, perr := f.GetWorkbookProps(); perr == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}

	grid := make([][]gridCell, len(raw))

	for i, line := range raw {
		out := make([]gridCell, len(line))

		for j, v := range line {
			text := v
			if i < len(display) && j < len(display[i]) {
				text = display[i][j]
			}

			cell, cerr := r.typed(j+1, i+1, v)
			if cerr != nil {
				return "", nil, cerr
			}

			out[j] = gridCell{text: text, typed: cell}
		}

		grid[i] = out
	}

	return sheet, grid, nil
}

type xlsxCells struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

// typed 按单元格类型和样式还原取值.
func (r *xlsxCells) typed(col, row int, raw string) (types.Cell, error) {
	if raw == "" {
		return types.StringCell(""), nil
	}

	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return types.Cell{}, err
	}

	ct, err := r.f.GetCellType(r.sheet, name)
	if err != nil {
		return types.Cell{}, fmt.Errorf("cell %s: %w", name, err)
	}

	switch ct {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return types.StringCell(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return types.StringCell("TRUE"), nil
		}

		return types.StringCell("FALSE"), nil
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, perr := time.Parse(layout, raw); perr == nil {
				return types.DateCell(t), nil
			}
		}

		return types.StringCell(raw), nil
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return types.StringCell(raw), nil
	}

	if r.isDateStyled(name) {
		if t, derr := excelize.ExcelDateToTime(num, r.date1904); derr == nil {
			return types.DateCell(t), nil
		}
	}

	return types.NumberCell(num), nil
}

// isDateStyled 单元格的数字格式是否为日期/时间，按样式编号缓存.
func (r *xlsxCells) isDateStyled(cell string) bool {
	styleID, err := r.f.GetCellStyle(r.sheet, cell)
	if err != nil {
		return false
	}

	if v, ok := r.dateStyles[styleID]; ok {
		return v
	}

	isDate := false

	if st, serr := r.f.GetStyle(styleID); serr == nil && st != nil {
		if _, ok := builtinDateFormats[st.NumFmt]; ok {
			isDate = true
		} else if st.CustomNumFmt != nil {
			isDate = isDateFormatCode(*st.CustomNumFmt)
		}
	}

	r.dateStyles[styleID] = isDate

	return isDate
}

// isDateFormatCode 去掉引号、方括号和转义字符后，格式串里出现日期时间占位符即视为日期.
func isDateFormatCode(code string) bool {
	// 只看第一段（正数格式）
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}

	var b strings.Builder

	inQuote, inBracket := false, false

	for i := 0; i < len(code); i++ {
		ch := code[i]

		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			inBracket = ch != ']'
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++ // 跳过被转义或占位的下一个字符
		default:
			b.WriteByte(ch)
		}
	}

	stripped := strings.ToLower(b.String())
	if stripped == "general" {
		return false
	}

	return strings.ContainsAny(stripped, "ydhsm")
}
