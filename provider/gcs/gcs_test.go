package gcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "missing bucket", config: Config{}, wantErr: "bucket name is required"},
		{name: "bucket only", config: Config{Bucket: "coverage"}},
		{name: "with endpoint", config: Config{Bucket: "coverage", Endpoint: "http://localhost:4443/storage/v1/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNew_MissingBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}

func TestNew_EmulatorEndpointNeedsNoCredentials(t *testing.T) {
	ctx := context.Background()
	g, err := New(ctx, Config{Bucket: "coverage", Endpoint: "http://127.0.0.1:4443/storage/v1/"})
	require.NoError(t, err)
	assert.NoError(t, g.Close(ctx))
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		key      string
		expected string
	}{
		{name: "no prefix", key: "coverband_blob_store_0_1.runtime", expected: "coverband_blob_store_0_1.runtime"},
		{name: "prefix without slash", prefix: "coverband", key: "coverband_blob_store_0_1.runtime", expected: "coverband/coverband_blob_store_0_1.runtime"},
		{name: "prefix with slash", prefix: "coverband/", key: "coverband_blob_store_0_1.app.eager_loading", expected: "coverband/coverband_blob_store_0_1.app.eager_loading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, objectName(tt.prefix, tt.key))
		})
	}
}
