package types_test

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/exceleasy/pkg/internal/types"
)

func TestCellJSONIsNativeScalar(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	row := types.Row{
		"Region": types.StringCell("North"),
		"Units":  types.NumberCell(120),
		"Date":   types.DateCell(day),
		"Code":   types.StringCell("00123"),
	}

	b, err := sonic.ConfigStd.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Region":"North","Units":120,"Date":"2024-01-15T00:00:00Z","Code":"00123"}`, string(b))
}

func TestMatrixPreservesKinds(t *testing.T) {
	day := time.Date(2023, 12, 31, 10, 30, 0, 0, time.FixedZone("X", 3600))
	columns := []string{"a", "b", "c"}
	rows := []types.Row{
		{"a": types.StringCell("1.5"), "b": types.NumberCell(1.5), "c": types.DateCell(day)},
		{"a": types.StringCell(""), "b": types.NumberCell(-2), "c": types.StringCell("x")},
	}

	back := types.RowsFromMatrix(columns, types.Matrix(columns, rows))
	require.Len(t, back, 2)
	assert.Equal(t, types.CellString, back[0]["a"].Kind)
	assert.Equal(t, types.CellNumber, back[0]["b"].Kind)
	assert.Equal(t, types.CellDate, back[0]["c"].Kind)
	assert.True(t, back[0]["c"].Time.Equal(day))
	assert.Equal(t, time.UTC, back[0]["c"].Time.Location())
	assert.Equal(t, rows[1], back[1])
}

func TestRowsFromMatrixPadsShortLines(t *testing.T) {
	rows := types.RowsFromMatrix([]string{"a", "b"}, [][]types.TaggedCell{{{T: "n", N: 3}}})

	assert.Equal(t, types.NumberCell(3), rows[0]["a"])
	assert.True(t, rows[0]["b"].IsEmpty())
}

func TestPrincipalAccess(t *testing.T) {
	alice := types.Principal{UserID: "alice@example.com", Role: types.RoleUser}
	admin := types.Principal{UserID: "root@example.com", Role: types.ParseRole("Admin")}

	assert.True(t, alice.CanAccess("alice@example.com"))
	assert.False(t, alice.CanAccess("bob@example.com"))
	assert.True(t, admin.CanAccess("bob@example.com"))
	assert.Equal(t, "alice@example.com", alice.DisplayName())
}

func TestFileQueryNormalize(t *testing.T) {
	q := types.FileQuery{Page: 0, PageSize: 1000}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, types.MaxPageSize, q.PageSize)
	assert.Equal(t, 0, q.Offset())

	q = types.FileQuery{Page: 3, PageSize: 10}.Normalize()
	assert.Equal(t, 20, q.Offset())
	assert.Equal(t, 20, types.LogQuery{}.EffectiveLimit())
}
