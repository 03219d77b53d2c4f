package log_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/log"
)

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer

	l := log.New(configs.LogConfig{Level: "info", Format: configs.LogFormatJSON}, false, &buf)
	l.Info().Str("file", "sales.xlsx").Msg("upload accepted")
	l.Debug().Msg("hidden")

	out := buf.String()
	require.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, `"service":"exceleasy"`)
	assert.Contains(t, out, `"file":"sales.xlsx"`)
	assert.Contains(t, out, `"message":"upload accepted"`)
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer

	l := log.New(configs.LogConfig{Level: "loud", Format: configs.LogFormatJSON}, false, &buf)
	assert.Contains(t, buf.String(), `invalid log level "loud"`)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	buf.Reset()
	l.Info().Msg("still logging")
	assert.Contains(t, buf.String(), "still logging")
}

func TestGinWriterLevels(t *testing.T) {
	var buf bytes.Buffer

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	l := zerolog.New(&buf)

	w := log.NewGinWriter(&l, zerolog.ErrorLevel)
	n, err := w.Write([]byte("[GIN-debug] boom\n"))
	require.NoError(t, err)
	assert.Equal(t, len("[GIN-debug] boom\n"), n)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"message":"[GIN-debug] boom"`)

	buf.Reset()
	_, _ = log.NewGinWriter(&l, zerolog.InfoLevel).Write([]byte("   \n"))
	assert.Empty(t, buf.String())
}
