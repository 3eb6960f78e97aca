package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photobooth-app/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "photobooth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func sessionAt(userID *string, at time.Time) *models.StripSession {
	return &models.StripSession{
		CreatedAt:     at,
		PhotoURLs:     []string{"/storage/photostrips/a/photo_0.jpg", "/storage/photostrips/a/photo_1.jpg", "/storage/photostrips/a/photo_2.jpg"},
		PhotostripURL: "/storage/photostrips/a/photostrip.jpg",
		Captions:      "hello",
		UserID:        userID,
	}
}

func TestInsertAndGetSession(t *testing.T) {
	db := testDB(t)

	s := sessionAt(strPtr("user-a"), time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC))
	id, err := db.InsertSession(s)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := db.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, s.PhotoURLs, got.PhotoURLs)
	assert.Equal(t, s.PhotostripURL, got.PhotostripURL)
	assert.Equal(t, "hello", got.Captions)
	require.NotNil(t, got.UserID)
	assert.Equal(t, "user-a", *got.UserID)
}

func TestUpdateSessionMutableFieldsOnly(t *testing.T) {
	db := testDB(t)
	id, err := db.InsertSession(sessionAt(nil, time.Now()))
	require.NoError(t, err)

	require.NoError(t, db.UpdateSession(id, "new caption", "a note"))

	got, err := db.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, "new caption", got.Captions)
	assert.Equal(t, "a note", got.MemoryNotes)
	assert.Equal(t, "/storage/photostrips/a/photostrip.jpg", got.PhotostripURL)
	assert.Len(t, got.PhotoURLs, 3)
}

func TestUpdateSessionMissingRow(t *testing.T) {
	db := testDB(t)
	err := db.UpdateSession("nope", "c", "n")
	assert.Error(t, err)
}

func TestListSessionsIdentityScoping(t *testing.T) {
	db := testDB(t)

	_, err := db.InsertSession(sessionAt(strPtr("alice"), time.Now()))
	require.NoError(t, err)
	_, err = db.InsertSession(sessionAt(strPtr("bob"), time.Now()))
	require.NoError(t, err)
	_, err = db.InsertSession(sessionAt(nil, time.Now()))
	require.NoError(t, err)

	alice, err := db.ListSessions(strPtr("alice"), 50, nil, nil)
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, "alice", *alice[0].UserID)

	anon, err := db.ListSessions(nil, 50, nil, nil)
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Nil(t, anon[0].UserID)

	// Bob's rows never leak into Alice's or the anonymous view.
	for _, s := range append(alice, anon...) {
		if s.UserID != nil {
			assert.NotEqual(t, "bob", *s.UserID)
		}
	}
}

func TestListSessionsDateRangeAndOrder(t *testing.T) {
	db := testDB(t)
	user := strPtr("alice")

	may := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	juneEarly := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	juneLate := time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC)
	july := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{may, juneEarly, juneLate, july} {
		_, err := db.InsertSession(sessionAt(user, at))
		require.NoError(t, err)
	}

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	got, err := db.ListSessions(user, 50, &start, &end)
	require.NoError(t, err)
	require.Len(t, got, 2, "half-open range keeps June rows only")

	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt), "descending by creation time")
}

func TestDistinctCaptureDates(t *testing.T) {
	db := testDB(t)
	user := strPtr("alice")

	day := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{day, day.Add(2 * time.Hour), day.AddDate(0, 0, 5)} {
		_, err := db.InsertSession(sessionAt(user, at))
		require.NoError(t, err)
	}
	_, err := db.InsertSession(sessionAt(strPtr("bob"), day))
	require.NoError(t, err)

	dates, err := db.DistinctCaptureDates(user)
	require.NoError(t, err)
	require.Len(t, dates, 2, "same-day sessions collapse into one date")
	assert.True(t, dates[0].After(dates[1]))
}

func TestDiskStoreUploadAndOverwrite(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "")
	require.NoError(t, err)

	url1, err := store.Upload("photostrips", "sessions/anon/123/photostrip.jpg", []byte("v1"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/storage/photostrips/sessions/anon/123/photostrip.jpg", url1)

	url2, err := store.Upload("photostrips", "sessions/anon/123/photostrip.jpg", []byte("v2"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, url1, url2, "overwriting the same path keeps the same URL")

	data, err := store.Read("photostrips", "sessions/anon/123/photostrip.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Upload("photostrips", "../../etc/passwd", []byte("x"), "text/plain")
	assert.Error(t, err)

	_, err = store.Upload("../photostrips", "a.jpg", []byte("x"), "image/jpeg")
	assert.Error(t, err)
}

func TestParseObjectURL(t *testing.T) {
	bucket, path, err := ParseObjectURL("/storage/photostrips/sessions/u1/1718000000/photostrip.jpg")
	require.NoError(t, err)
	assert.Equal(t, "photostrips", bucket)
	assert.Equal(t, "sessions/u1/1718000000/photostrip.jpg", path)

	bucket, path, err = ParseObjectURL("http://localhost:8080/storage/photostrips/a/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "photostrips", bucket)
	assert.Equal(t, "a/b.jpg", path)

	_, _, err = ParseObjectURL("/download/other/thing.jpg")
	assert.Error(t, err)
}
