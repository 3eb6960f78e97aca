package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"sync"

	"github.com/nfnt/resize"
)

// ThumbnailCache stores generated thumbnails.
type ThumbnailCache struct {
	cache map[string][]byte
	mu    sync.RWMutex
}

func NewThumbnailCache() *ThumbnailCache {
	return &ThumbnailCache{cache: make(map[string][]byte)}
}

// Thumbnail returns a cached JPEG thumbnail of the stored object, generating
// and caching it on first use. Used by the gallery grid so full composites
// are not shipped for previews.
func (tc *ThumbnailCache) Thumbnail(store *DiskStore, bucket, objectPath string, maxW, maxH uint) ([]byte, error) {
	key := fmt.Sprintf("%s/%s@%dx%d", bucket, objectPath, maxW, maxH)

	tc.mu.RLock()
	if cached, ok := tc.cache[key]; ok {
		tc.mu.RUnlock()
		return cached, nil
	}
	tc.mu.RUnlock()

	data, err := store.Read(bucket, objectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read object for thumbnail: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", bucket, objectPath, err)
	}

	thumb := resize.Thumbnail(maxW, maxH, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	tc.mu.Lock()
	tc.cache[key] = buf.Bytes()
	tc.mu.Unlock()

	return buf.Bytes(), nil
}

// Invalidate drops cached thumbnails for one object, e.g. after the
// composite was overwritten in place.
func (tc *ThumbnailCache) Invalidate(bucket, objectPath string) {
	prefix := bucket + "/" + objectPath + "@"
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for key := range tc.cache {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(tc.cache, key)
		}
	}
}
