package decoder

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// dateNumFmt 内置格式 22：m/d/yy h:mm.
const dateNumFmt = 22

// WriteXLSX 把表格重新生成为 xlsx 写入 w，表头在第一行.
func WriteXLSX(w io.Writer, table *types.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if table.Sheet != "" && table.Sheet != sheet {
		if err := f.SetSheetName(sheet, table.Sheet); err == nil {
			sheet = table.Sheet
		}
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: dateNumFmt})
	if err != nil {
		return fmt.Errorf("create date style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}

	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range table.Rows {
		values := make([]any, len(table.Columns))

		for j, col := range table.Columns {
			cell := row[col]

			switch cell.Kind {
			case types.CellNumber:
				values[j] = cell.Num
			case types.CellDate:
				values[j] = excelize.Cell{StyleID: dateStyle, Value: cell.Time}
			default:
				values[j] = cell.Str
			}
		}

		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := sw.SetRow(axis, values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	return f.Write(w)
}
