package blob_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/blob"
	"github.com/yeisme/exceleasy/pkg/internal/types"
)

func newValidator(sniff bool) *blob.Validator {
	return blob.NewValidator(configs.IngestConfig{
		MaxUploadBytes:   configs.DefaultMaxUploadBytes,
		AllowedMIMETypes: []string{configs.MIMETypeXLS, configs.MIMETypeXLSX},
		SniffContent:     sniff,
	})
}

func workbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Region", "Units"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"North", 120}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf.Bytes()
}

func TestValidateAcceptsXLSX(t *testing.T) {
	data := workbook(t)

	got, err := newValidator(true).Validate(types.Upload{
		FileName:     "sales.xlsx",
		DeclaredMIME: configs.MIMETypeXLSX,
		DeclaredSize: int64(len(data)),
		Body:         bytes.NewReader(data),
	})
	require.NoError(t, err)
	assert.Equal(t, types.FormatXLSX, got.Format)
	assert.Equal(t, data, got.Data)
	assert.Equal(t, "sales.xlsx", got.FileName)
}

func TestValidateAcceptsOLEHeader(t *testing.T) {
	data := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 1024)...)

	got, err := newValidator(true).Validate(types.Upload{
		FileName:     "legacy.xls",
		DeclaredMIME: "application/vnd.ms-excel; charset=binary",
		Body:         bytes.NewReader(data),
	})
	require.NoError(t, err)
	assert.Equal(t, types.FormatXLS, got.Format)
	assert.Equal(t, configs.MIMETypeXLS, got.ContentType)
}

func TestValidateRejectsDeclaredOversize(t *testing.T) {
	body := &countingReader{}

	_, err := newValidator(true).Validate(types.Upload{
		FileName:     "big.xlsx",
		DeclaredMIME: configs.MIMETypeXLSX,
		DeclaredSize: 6 * 1024 * 1024,
		Body:         body,
	})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "File size must be less than 5MB", errs.Message(err))
	assert.Zero(t, body.n, "body must not be read")
}

func TestValidateRejectsUndeclaredOversize(t *testing.T) {
	data := append(workbook(t), make([]byte, 6*1024*1024)...)

	_, err := newValidator(true).Validate(types.Upload{
		FileName:     "liar.xlsx",
		DeclaredMIME: configs.MIMETypeXLSX,
		DeclaredSize: 10,
		Body:         bytes.NewReader(data),
	})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, errs.Message(err), "less than 5MB")
}

func TestValidateRejectsMaxBytesReader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	body := http.MaxBytesReader(httptest.NewRecorder(), req.Body, 16)

	_, err := newValidator(false).Validate(types.Upload{
		FileName:     "a.xlsx",
		DeclaredMIME: configs.MIMETypeXLSX,
		Body:         body,
	})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, errs.Message(err), "less than 5MB")
}

func TestValidateRejectsWrongType(t *testing.T) {
	cases := []types.Upload{
		{FileName: "notes.txt", DeclaredMIME: "text/plain", Body: strings.NewReader("hello")},
		{FileName: "data.csv", DeclaredMIME: "text/csv", Body: strings.NewReader("a,b")},
		// 声明正确但内容是纯文本
		{FileName: "fake.xlsx", DeclaredMIME: configs.MIMETypeXLSX, Body: strings.NewReader("just text")},
	}

	for _, u := range cases {
		_, err := newValidator(true).Validate(u)
		require.ErrorIs(t, err, errs.ErrValidation, u.FileName)
		assert.Equal(t, blob.MsgInvalidType, errs.Message(err), u.FileName)
	}
}

func TestValidateWithoutSniffFallsBackToDeclared(t *testing.T) {
	got, err := newValidator(false).Validate(types.Upload{
		FileName:     "odd.xls",
		DeclaredMIME: configs.MIMETypeXLS,
		Body:         strings.NewReader("not really a workbook"),
	})
	require.NoError(t, err)
	assert.Equal(t, types.FormatXLS, got.Format)
}

func TestValidateRejectsEmpty(t *testing.T) {
	_, err := newValidator(true).Validate(types.Upload{
		FileName:     "empty.xlsx",
		DeclaredMIME: configs.MIMETypeXLSX,
		Body:         bytes.NewReader(nil),
	})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = newValidator(true).Validate(types.Upload{DeclaredMIME: configs.MIMETypeXLSX, Body: bytes.NewReader([]byte("x"))})
	require.ErrorIs(t, err, errs.ErrValidation)
}

// countingReader 记录被读取的字节数.
type countingReader struct{ n int }

func (c *countingReader) Read(p []byte) (int, error) {
	c.n += len(p)
	return 0, io.EOF
}
