package decoder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yeisme/exceleasy/pkg/internal/types"
)

func TestInferXLSCell(t *testing.T) {
	assert.Equal(t, types.NumberCell(42), inferXLSCell("42"))
	assert.Equal(t, types.NumberCell(-0.5), inferXLSCell("-0.5"))
	assert.Equal(t, types.NumberCell(0.5), inferXLSCell("0.5"))
	assert.Equal(t, types.StringCell("007"), inferXLSCell("007"))
	assert.Equal(t, types.StringCell("TRUE"), inferXLSCell("true"))
	assert.Equal(t, types.StringCell("East"), inferXLSCell("East"))
	assert.True(t, inferXLSCell("").IsEmpty())

	d := inferXLSCell("2024-01-15")
	assert.Equal(t, types.CellDate, d.Kind)
	assert.True(t, d.Time.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
}

func TestIsDateFormatCode(t *testing.T) {
	assert.True(t, isDateFormatCode("yyyy-mm-dd"))
	assert.True(t, isDateFormatCode("[$-409]d-mmm-yy;@"))
	assert.True(t, isDateFormatCode("h:mm AM/PM"))
	assert.False(t, isDateFormatCode("0.00"))
	assert.False(t, isDateFormatCode("#,##0\" days\""))
	assert.False(t, isDateFormatCode("[Red]0.00"))
	assert.False(t, isDateFormatCode("General"))
}
