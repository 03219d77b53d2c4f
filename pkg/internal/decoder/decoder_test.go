package decoder_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/decoder"
	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// build 生成只有第一个工作表的 xlsx，fill 负责写入单元格.
func build(t *testing.T, fill func(f *excelize.File, sheet string)) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	fill(f, "Sheet1")

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf.Bytes()
}

func TestDecodeSales(t *testing.T) {
	data := build(t, func(f *excelize.File, s string) {
		_ = f.SetSheetRow(s, "A1", &[]any{"Region", "Total"})
		_ = f.SetSheetRow(s, "A2", &[]any{"East", 100})
	})

	table, err := decoder.Decode(data, types.FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", table.Sheet)
	assert.Equal(t, []string{"Region", "Total"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, types.StringCell("East"), table.Rows[0]["Region"])
	assert.Equal(t, types.NumberCell(100), table.Rows[0]["Total"])
}

func TestDecodeEmptySheetHasNoRows(t *testing.T) {
	data := build(t, func(*excelize.File, string) {})

	table, err := decoder.Decode(data, types.FormatXLSX)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Empty(t, table.Columns)
}

func TestDecodeHeaderOnly(t *testing.T) {
	data := build(t, func(f *excelize.File, s string) {
		_ = f.SetSheetRow(s, "A1", &[]any{"a", "b"})
	})

	table, err := decoder.Decode(data, types.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestDecodeCellTyping(t *testing.T) {
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	data := build(t, func(f *excelize.File, s string) {
		_ = f.SetSheetRow(s, "A1", &[]any{"Text", "Num", "When", "Flag", "Code"})
		_ = f.SetCellStr(s, "A2", "hello")
		_ = f.SetCellFloat(s, "B2", 12.5, -1, 64)
		_ = f.SetCellValue(s, "C2", day)
		_ = f.SetCellBool(s, "D2", true)
		// 看起来像数字的共享字符串仍是字符串
		_ = f.SetCellStr(s, "E2", "00042")
	})

	table, err := decoder.Decode(data, types.FormatXLSX)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Equal(t, types.StringCell("hello"), row["Text"])
	assert.Equal(t, types.NumberCell(12.5), row["Num"])
	assert.Equal(t, types.CellDate, row["When"].Kind)
	assert.True(t, row["When"].Time.Equal(day), row["When"].Time)
	assert.Equal(t, types.StringCell("TRUE"), row["Flag"])
	assert.Equal(t, types.StringCell("00042"), row["Code"])
}

func TestDecodeCustomDateFormat(t *testing.T) {
	data := build(t, func(f *excelize.File, s string) {
		code := "yyyy\"年\"mm\"月\"dd"
		style, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &code})
		pct, _ := f.NewStyle(&excelize.Style{NumFmt: 10})

		_ = f.SetSheetRow(s, "A1", &[]any{"Day", "Rate"})
		_ = f.SetCellFloat(s, "A2", 45292, -1, 64) // 2024-01-01
		_ = f.SetCellStyle(s, "A2", "A2", style)
		_ = f.SetCellFloat(s, "B2", 0.25, -1, 64)
		_ = f.SetCellStyle(s, "B2", "B2", pct)
	})

	table, err := decoder.Decode(data, types.FormatXLSX)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	assert.Equal(t, types.CellDate, table.Rows[0]["Day"].Kind)
	assert.Equal(t, "2024-01-01", table.Rows[0]["Day"].Time.Format("2006-01-02"))
	assert.Equal(t, types.NumberCell(0.25), table.Rows[0]["Rate"])
}

func TestDecodeHeaderEdgeCases(t *testing.T) {
	data := build(t, func(f *excelize.File, s string) {
		// 前两行为空，第三行才是表头；B、D 表头为空，A 与 C 重名
		_ = f.SetCellStr(s, "A3", "Name")
		_ = f.SetCellStr(s, "C3", "Name")
		_ = f.SetCellStr(s, "E3", "Last")
		_ = f.SetSheetRow(s, "A4", &[]any{"first", "x", "second", "y", "tail"})
		// 空行被跳过
		_ = f.SetSheetRow(s, "A6", &[]any{"only-a"})
	})

	table, err := decoder.Decode(data, types.FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "__EMPTY", "__EMPTY_1", "Last"}, table.Columns)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, types.StringCell("second"), first["Name"], "later duplicate column wins")
	assert.Equal(t, types.StringCell("x"), first["__EMPTY"])
	assert.Equal(t, types.StringCell("y"), first["__EMPTY_1"])
	assert.Equal(t, types.StringCell("tail"), first["Last"])

	second := table.Rows[1]
	assert.Len(t, second, len(table.Columns), "missing cells are filled")
	assert.Equal(t, types.StringCell(""), second["Last"])
	assert.Equal(t, types.StringCell(""), second["Name"])
}

func TestDecodeUsesFirstSheetOnly(t *testing.T) {
	data := build(t, func(f *excelize.File, s string) {
		_ = f.SetSheetRow(s, "A1", &[]any{"first"})
		_ = f.SetSheetRow(s, "A2", &[]any{1})

		_, _ = f.NewSheet("Other")
		_ = f.SetSheetRow("Other", "A1", &[]any{"second"})
	})

	table, err := decoder.Decode(data, types.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, table.Columns)
}

func TestDecodeCorrupt(t *testing.T) {
	cases := map[types.Format][]byte{
		types.FormatXLSX: []byte("PK\x03\x04 this is not a real zip"),
		types.FormatXLS:  {0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00},
	}

	for format, data := range cases {
		_, err := decoder.Decode(data, format)
		require.Error(t, err, format)
		assert.ErrorIs(t, err, errs.ErrDecode, format)
	}

	_, err := decoder.Decode([]byte("x"), types.Format("csv"))
	assert.ErrorIs(t, err, errs.ErrDecode)
}

func TestPoolHonoursCancellation(t *testing.T) {
	pool := decoder.NewPool(configs.IngestConfig{MaxConcurrentDecodes: 1})
	data := build(t, func(f *excelize.File, s string) {
		_ = f.SetSheetRow(s, "A1", &[]any{"a"})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pool.Decode(ctx, &types.Blob{Data: data, Format: types.FormatXLSX})
	require.ErrorIs(t, err, context.Canceled)

	table, err := pool.Decode(context.Background(), &types.Blob{Data: data, Format: types.FormatXLSX})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, table.Columns)
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	day := time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC)
	in := &types.Table{
		Sheet:   "Sales",
		Columns: []string{"Region", "Total", "Day"},
		Rows: []types.Row{
			{"Region": types.StringCell("East"), "Total": types.NumberCell(100), "Day": types.DateCell(day)},
			{"Region": types.StringCell("West"), "Total": types.NumberCell(-3.5), "Day": types.StringCell("")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, decoder.WriteXLSX(&buf, in))

	out, err := decoder.Decode(buf.Bytes(), types.FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, "Sales", out.Sheet)
	assert.Equal(t, in.Columns, out.Columns)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, types.NumberCell(100), out.Rows[0]["Total"])
	assert.True(t, out.Rows[0]["Day"].Time.Equal(day))
	assert.Equal(t, types.StringCell("West"), out.Rows[1]["Region"])
}
