package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewStubObjectStorage("http://localhost:8080/media/")

	raw, expiresAt, err := s.GenerateUploadURL(ctx, "products/a.png", "image/png", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "http://localhost:8080/media/upload/products/a.png?expires="))
	assert.True(t, expiresAt.After(time.Now()))

	assert.Equal(t, "http://localhost:8080/media/products/a.png", s.PublicURL("products/a.png"))

	exists, err := s.ObjectExists(ctx, "products/a.png")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.DeleteObject(ctx, "products/a.png"))
	exists, err = s.ObjectExists(ctx, "products/a.png")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.ObjectExists(ctx, "")
	assert.ErrorIs(t, err, ErrStorageKeyRequired)
}
