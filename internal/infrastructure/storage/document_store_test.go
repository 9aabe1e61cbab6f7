package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/config"
)

func TestNewS3DocumentStore_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3DocumentStore(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		}
		_, err := NewS3DocumentStore(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "invoice-docs",
			SecretAccessKey: "test-secret",
		}
		_, err := NewS3DocumentStore(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:      "invoice-docs",
			AccessKeyID: "test-key",
		}
		_, err := NewS3DocumentStore(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates store", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "invoice-docs",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Region:          "us-east-1",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
			PresignTTL:      24 * time.Hour,
		}
		store, err := NewS3DocumentStore(cfg)
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.Equal(t, "invoice-docs", store.Bucket())
		assert.Equal(t, 24*time.Hour, store.presignTTL)
	})

	t.Run("default region is us-east-1", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "invoice-docs",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Endpoint:        "http://localhost:9000",
		}
		store, err := NewS3DocumentStore(cfg)
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("adds https prefix when scheme missing", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "invoice-docs",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Endpoint:        "minio.internal:9000",
		}
		store, err := NewS3DocumentStore(cfg)
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("empty endpoint uses regional default", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "invoice-docs",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Region:          "eu-west-1",
		}
		store, err := NewS3DocumentStore(cfg)
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("default presign TTL is 72 hours", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "invoice-docs",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Endpoint:        "http://localhost:9000",
		}
		store, err := NewS3DocumentStore(cfg)
		require.NoError(t, err)
		assert.Equal(t, DefaultPresignTTL, store.presignTTL)
	})
}

func TestS3DocumentStoreOptions(t *testing.T) {
	baseConfig := &config.StorageConfig{
		Bucket:          "invoice-docs",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
	}

	t.Run("WithLogger sets custom logger", func(t *testing.T) {
		logger := zaptest.NewLogger(t)
		store, err := NewS3DocumentStore(baseConfig, WithLogger(logger))
		require.NoError(t, err)
		assert.NotNil(t, store.logger)
	})

	t.Run("WithPresignTTL overrides config", func(t *testing.T) {
		store, err := NewS3DocumentStore(baseConfig, WithPresignTTL(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, store.presignTTL)
	})
}

func TestS3DocumentStore_KeyValidation(t *testing.T) {
	cfg := &config.StorageConfig{
		Bucket:          "invoice-docs",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
	}
	store, err := NewS3DocumentStore(cfg)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("Put rejects empty key", func(t *testing.T) {
		err := store.Put(ctx, "", []byte("%PDF"), "application/pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "key is required")
	})

	t.Run("PresignGet rejects empty key", func(t *testing.T) {
		_, _, err := store.PresignGet(ctx, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "key is required")
	})

	t.Run("Delete rejects empty key", func(t *testing.T) {
		err := store.Delete(ctx, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "key is required")
	})
}
