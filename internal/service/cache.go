package service

import (
	"context"
	"path/filepath"

	"github.com/MimeLyc/latepost/internal/late"
)

// Uploader is the media half of the Late client.
type Uploader interface {
	UploadMedia(ctx context.Context, path string) (*late.UploadedFile, error)
}

// MediaCache uploads each video at most once per run. Failed uploads are
// remembered too, so a rejected file is not retried for every slot that
// references it. Not safe for concurrent use.
type MediaCache struct {
	uploader Uploader
	items    map[string]late.MediaItem
	failed   map[string]*SchedulerError
	uploads  int
}

func NewMediaCache(uploader Uploader) *MediaCache {
	return &MediaCache{
		uploader: uploader,
		items:    make(map[string]late.MediaItem),
		failed:   make(map[string]*SchedulerError),
	}
}

// Resolve returns the media item for path, uploading it on first reference.
func (c *MediaCache) Resolve(ctx context.Context, path string) (late.MediaItem, *SchedulerError) {
	if item, ok := c.items[path]; ok {
		return item, nil
	}
	if err, ok := c.failed[path]; ok {
		return late.MediaItem{}, err
	}

	c.uploads++
	uploaded, err := c.uploader.UploadMedia(ctx, path)
	if err != nil {
		schedErr := Classify(err)
		// fatal errors are not a property of the file
		if schedErr.Fatal() {
			return late.MediaItem{}, schedErr
		}
		if schedErr.Type != ErrUpload {
			schedErr = NewErrorWithCause(ErrUpload, schedErr.Message, err)
		}
		schedErr.WithContext("video", filepath.Base(path))
		c.failed[path] = schedErr
		return late.MediaItem{}, schedErr
	}

	item := late.MediaItem{
		Type:     "video",
		URL:      uploaded.URL,
		Filename: uploaded.Filename,
	}
	c.items[path] = item
	return item, nil
}

// Get returns a cached item without uploading.
func (c *MediaCache) Get(path string) (late.MediaItem, bool) {
	item, ok := c.items[path]
	return item, ok
}

func (c *MediaCache) Len() int {
	return len(c.items)
}

// Uploads counts upload attempts, successful or not.
func (c *MediaCache) Uploads() int {
	return c.uploads
}
