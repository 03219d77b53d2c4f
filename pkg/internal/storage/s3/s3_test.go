package s3_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/storage/s3"
)

func TestObjectKey(t *testing.T) {
	at := time.Date(2025, 3, 9, 23, 0, 0, 0, time.FixedZone("X", 8*3600))
	assert.Equal(t, "uploads/2025/03/01ABC.xlsx", s3.ObjectKey("uploads/", "01ABC", "Sales.XLSX", at))
	assert.Equal(t, "2025/03/01ABC", s3.ObjectKey("", "01ABC", "noext", at))
}

func TestMinioBlobLifecycle(t *testing.T) {
	if os.Getenv("ENABLE_S3_TEST") == "" {
		t.Skip("set ENABLE_S3_TEST=1 to run against a local minio")
	}

	ctx := context.Background()
	cli, err := s3.New(ctx, &configs.S3Config{
		Endpoint:        configs.DefaultS3Endpoint,
		AccessKeyID:     configs.DefaultS3AccessKeyID,
		SecretAccessKey: configs.DefaultS3SecretAccessKey,
		BucketName:      "exceleasy-test",
		Region:          configs.DefaultS3Region,
		KeyPrefix:       "test/",
	})
	require.NoError(t, err)
	require.NoError(t, cli.HealthCheck(ctx))

	key := s3.ObjectKey(cli.Prefix(), "01TEST", "a.xlsx", time.Now())
	data := []byte("PK\x03\x04 payload")
	require.NoError(t, cli.PutBlob(ctx, key, bytes.NewReader(data), int64(len(data)), "application/zip"))

	rc, size, err := cli.GetBlob(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, int64(len(data)), size)
	assert.Equal(t, data, got)

	list, err := cli.ListBlobs(ctx, cli.Prefix())
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	require.NoError(t, cli.RemoveBlob(ctx, key))
	require.NoError(t, cli.RemoveBlob(ctx, key))

	_, _, err = cli.GetBlob(ctx, key)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
