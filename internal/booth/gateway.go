// Package booth coordinates the capture-to-photobook pipeline: rendering
// photostrips, persisting them, and listing saved sessions.
package booth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"photobooth-app/internal/models"
	"photobooth-app/internal/storage"
)

const (
	// StripBucket is where photos and composites live in the object store.
	StripBucket = "photostrips"

	anonymousFolder = "anonymous"
)

var (
	// ErrNotOwner means the caller's identity does not match the row's
	// identity. Nothing is mutated.
	ErrNotOwner = errors.New("session belongs to a different user")
	// ErrCompositeUpload means the photostrip image could not be stored, so
	// no row was written.
	ErrCompositeUpload = errors.New("photostrip upload failed")
)

// SessionStore is the row persistence the gateway needs. *storage.DB
// satisfies it; tests substitute fakes.
type SessionStore interface {
	InsertSession(s *models.StripSession) (string, error)
	GetSession(id string) (*models.StripSession, error)
	UpdateSession(id, captions, memoryNotes string) error
}

// Gateway persists finished photostrips: photo uploads, the composite
// upload, and the session row, in that order.
type Gateway struct {
	store  storage.ObjectStore
	db     SessionStore
	thumbs *storage.ThumbnailCache
	now    func() time.Time
}

func NewGateway(store storage.ObjectStore, db SessionStore, thumbs *storage.ThumbnailCache) *Gateway {
	return &Gateway{store: store, db: db, thumbs: thumbs, now: time.Now}
}

// SaveResult is what a save hands back to the UI. SessionID is
// models.UnknownSessionID when the composite was stored but the row
// insert failed.
type SaveResult struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// Save uploads the three source photos in parallel, then the composite,
// then inserts the session row. A failed photo upload costs only its URL
// slot; a failed composite upload aborts the save; a failed row insert
// still returns the composite URL so the user does not lose the image.
func (g *Gateway) Save(ctx context.Context, userID *string, photos []*models.Photo, composite []byte, captions, memoryNotes string) (*SaveResult, error) {
	folder := anonymousFolder
	if userID != nil {
		folder = *userID
	}
	stamp := g.now().UnixMilli()

	photoURLs := make([]string, len(photos))
	eg, _ := errgroup.WithContext(ctx)
	for i, photo := range photos {
		i, photo := i, photo
		eg.Go(func() error {
			data, err := encodePhoto(photo)
			if err != nil {
				log.Printf("Failed to encode photo %d: %v", i, err)
				return nil
			}
			objectPath := fmt.Sprintf("sessions/%s/%d/photo_%d.jpg", folder, stamp, i)
			url, err := g.store.Upload(StripBucket, objectPath, data, "image/jpeg")
			if err != nil {
				log.Printf("Failed to upload photo %d: %v", i, err)
				return nil
			}
			photoURLs[i] = url
			return nil
		})
	}
	eg.Wait()

	compositePath := fmt.Sprintf("sessions/%s/%d/photostrip.jpg", folder, stamp)
	compositeURL, err := g.store.Upload(StripBucket, compositePath, composite, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompositeUpload, err)
	}

	session := &models.StripSession{
		PhotoURLs:     photoURLs,
		PhotostripURL: compositeURL,
		Captions:      captions,
		MemoryNotes:   memoryNotes,
		UserID:        userID,
	}
	id, err := g.db.InsertSession(session)
	if err != nil {
		log.Printf("Failed to insert session row: %v", err)
		return &SaveResult{URL: compositeURL, SessionID: models.UnknownSessionID}, nil
	}

	return &SaveResult{URL: compositeURL, SessionID: id}, nil
}

// Update re-saves an existing session in place: the stored composite
// object is overwritten at its original path and only the captions and
// memory notes change on the row. Photo URLs and ownership are
// immutable. A nil composite edits captions and notes without touching
// the stored image.
func (g *Gateway) Update(ctx context.Context, userID *string, sessionID string, composite []byte, captions, memoryNotes string) (*SaveResult, error) {
	session, err := g.db.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if !session.OwnedBy(userID) {
		return nil, ErrNotOwner
	}

	url := session.PhotostripURL
	if composite != nil {
		bucket, objectPath, err := storage.ParseObjectURL(session.PhotostripURL)
		if err != nil {
			return nil, fmt.Errorf("stored photostrip URL unusable: %w", err)
		}
		url, err = g.store.Upload(bucket, objectPath, composite, "image/jpeg")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompositeUpload, err)
		}
		if g.thumbs != nil {
			g.thumbs.Invalidate(bucket, objectPath)
		}
	}

	if err := g.db.UpdateSession(sessionID, captions, memoryNotes); err != nil {
		return nil, fmt.Errorf("update session %s: %w", sessionID, err)
	}

	return &SaveResult{URL: url, SessionID: sessionID}, nil
}

func encodePhoto(photo *models.Photo) ([]byte, error) {
	if photo == nil || photo.Pixels == nil {
		return nil, errors.New("empty photo")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, photo.Pixels, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
