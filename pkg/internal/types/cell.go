package types

import (
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

// CellKind 单元格取值类别.
type CellKind uint8

const (
	CellString CellKind = iota
	CellNumber
	CellDate
)

// String 返回类别的短名，也是持久化格式中的 t 字段.
func (k CellKind) String() string {
	switch k {
	case CellNumber:
		return "n"
	case CellDate:
		return "d"
	default:
		return "s"
	}
}

// Cell 单元格值：字符串、数字或日期三者之一.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Time time.Time
}

// StringCell 构造字符串单元格.
func StringCell(s string) Cell { return Cell{Kind: CellString, Str: s} }

// NumberCell 构造数字单元格.
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Num: f} }

// DateCell 构造日期单元格，统一为 UTC.
func DateCell(t time.Time) Cell { return Cell{Kind: CellDate, Time: t.UTC()} }

// Value 返回底层 Go 值（string、float64 或 time.Time）.
func (c Cell) Value() any {
	switch c.Kind {
	case CellNumber:
		return c.Num
	case CellDate:
		return c.Time
	default:
		return c.Str
	}
}

// Text 返回单元格的文本形式.
func (c Cell) Text() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellDate:
		return c.Time.Format(time.RFC3339)
	default:
		return c.Str
	}
}

// IsEmpty 空字符串单元格.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellString && c.Str == ""
}

// MarshalJSON 输出原生 JSON 标量：字符串、数字或 RFC3339 日期字符串.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellNumber:
		return sonic.Marshal(c.Num)
	case CellDate:
		return sonic.Marshal(c.Time.Format(time.RFC3339Nano))
	default:
		return sonic.Marshal(c.Str)
	}
}

// TaggedCell 单元格的无损持久化形式.
type TaggedCell struct {
	T string     `json:"t"           bson:"t"`
	S string     `json:"s,omitempty" bson:"s,omitempty"`
	N float64    `json:"n,omitempty" bson:"n,omitempty"`
	D *time.Time `json:"d,omitempty" bson:"d,omitempty"`
}

// Tagged 转换为持久化形式.
func (c Cell) Tagged() TaggedCell {
	switch c.Kind {
	case CellNumber:
		return TaggedCell{T: "n", N: c.Num}
	case CellDate:
		t := c.Time.UTC()
		return TaggedCell{T: "d", D: &t}
	default:
		return TaggedCell{T: "s", S: c.Str}
	}
}

// Cell 从持久化形式还原.
func (t TaggedCell) Cell() Cell {
	switch t.T {
	case "n":
		return NumberCell(t.N)
	case "d":
		if t.D == nil {
			return StringCell("")
		}

		return DateCell(*t.D)
	default:
		return StringCell(t.S)
	}
}

// Row 一行数据：列名 -> 单元格.
type Row map[string]Cell

// Table 解析结果.
type Table struct {
	Sheet   string   // 工作表名
	Columns []string // 去重后的表头，按首次出现顺序
	Rows    []Row
}

// Matrix 按 columns 顺序把行展开为二维持久化形式.
func Matrix(columns []string, rows []Row) [][]TaggedCell {
	out := make([][]TaggedCell, len(rows))

	for i, row := range rows {
		line := make([]TaggedCell, len(columns))
		for j, col := range columns {
			line[j] = row[col].Tagged()
		}

		out[i] = line
	}

	return out
}

// RowsFromMatrix Matrix 的逆操作.
func RowsFromMatrix(columns []string, matrix [][]TaggedCell) []Row {
	rows := make([]Row, len(matrix))

	for i, line := range matrix {
		row := make(Row, len(columns))
		for j, col := range columns {
			if j < len(line) {
				row[col] = line[j].Cell()
			} else {
				row[col] = StringCell("")
			}
		}

		rows[i] = row
	}

	return rows
}
