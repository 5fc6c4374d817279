package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/latepost/internal/late"
)

func TestMediaCacheUploadsOnce(t *testing.T) {
	pub := &fakePublisher{}
	cache := NewMediaCache(pub)

	first, err := cache.Resolve(context.Background(), "/videos/a.mp4")
	require.Nil(t, err)
	second, err := cache.Resolve(context.Background(), "/videos/a.mp4")
	require.Nil(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, late.MediaItem{Type: "video", URL: "https://cdn.example.com/a.mp4", Filename: "a.mp4"}, first)
	assert.Equal(t, []string{"a.mp4"}, pub.uploads)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 1, cache.Uploads())

	_, ok := cache.Get("/videos/b.mp4")
	assert.False(t, ok)
}

func TestMediaCacheRemembersFailures(t *testing.T) {
	pub := &fakePublisher{uploadErr: map[string]error{
		"bad.mp4": &late.APIError{StatusCode: 500, Body: "boom"},
	}}
	cache := NewMediaCache(pub)

	for range 3 {
		_, err := cache.Resolve(context.Background(), "/videos/bad.mp4")
		require.NotNil(t, err)
		assert.Equal(t, ErrUpload, err.Type)
		assert.Equal(t, "bad.mp4", err.Context["video"])
	}

	assert.Equal(t, 1, cache.Uploads())
	assert.Zero(t, cache.Len())
}

func TestMediaCacheDoesNotRememberFatalErrors(t *testing.T) {
	pub := &fakePublisher{uploadErr: map[string]error{"a.mp4": late.ErrUnauthorized}}
	cache := NewMediaCache(pub)

	_, err := cache.Resolve(context.Background(), "/videos/a.mp4")
	require.NotNil(t, err)
	assert.Equal(t, ErrAuth, err.Type)

	delete(pub.uploadErr, "a.mp4")
	_, err = cache.Resolve(context.Background(), "/videos/a.mp4")
	assert.Nil(t, err)
	assert.Equal(t, 2, cache.Uploads())
}
