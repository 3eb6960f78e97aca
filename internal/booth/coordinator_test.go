package booth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photobooth-app/internal/models"
)

func TestSaveOnceRunsSaveAndRemembersResult(t *testing.T) {
	c := NewCoordinator()

	calls := 0
	save := func(ctx context.Context, sessionID string) (*SaveResult, error) {
		calls++
		assert.Empty(t, sessionID)
		return &SaveResult{URL: "http://x/strip.jpg", SessionID: "sess1"}, nil
	}

	result, performed, err := c.SaveOnce(context.Background(), save)
	require.NoError(t, err)
	assert.True(t, performed)
	assert.Equal(t, "sess1", result.SessionID)
	assert.True(t, c.Saved())

	// Saved strips do not save again; the original result comes back.
	result2, performed2, err := c.SaveOnce(context.Background(), save)
	require.NoError(t, err)
	assert.False(t, performed2)
	assert.Equal(t, result, result2)
	assert.Equal(t, 1, calls)
}

func TestSaveOnceConcurrentCallsRunOnce(t *testing.T) {
	c := NewCoordinator()

	started := make(chan struct{})
	release := make(chan struct{})
	save := func(ctx context.Context, sessionID string) (*SaveResult, error) {
		close(started)
		<-release
		return &SaveResult{SessionID: "sess1"}, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, performed, _ := c.SaveOnce(context.Background(), save)
		assert.True(t, performed)
	}()

	<-started
	result, performed, err := c.SaveOnce(context.Background(), save)
	require.NoError(t, err)
	assert.False(t, performed)
	assert.Nil(t, result)

	close(release)
	wg.Wait()
	assert.True(t, c.Saved())
}

func TestSaveOnceFailureAllowsRetry(t *testing.T) {
	c := NewCoordinator()

	fail := func(ctx context.Context, sessionID string) (*SaveResult, error) {
		return nil, errors.New("storage down")
	}
	_, performed, err := c.SaveOnce(context.Background(), fail)
	assert.True(t, performed)
	assert.Error(t, err)
	assert.False(t, c.Saved())

	ok := func(ctx context.Context, sessionID string) (*SaveResult, error) {
		return &SaveResult{SessionID: "sess2"}, nil
	}
	result, performed, err := c.SaveOnce(context.Background(), ok)
	require.NoError(t, err)
	assert.True(t, performed)
	assert.Equal(t, "sess2", result.SessionID)
}

func TestEditRoutesNextSaveAsUpdate(t *testing.T) {
	c := NewCoordinator()

	_, _, err := c.SaveOnce(context.Background(), func(ctx context.Context, sessionID string) (*SaveResult, error) {
		return &SaveResult{SessionID: "sess1"}, nil
	})
	require.NoError(t, err)

	c.Edit()
	assert.False(t, c.Saved())

	var sawID string
	_, _, err = c.SaveOnce(context.Background(), func(ctx context.Context, sessionID string) (*SaveResult, error) {
		sawID = sessionID
		return &SaveResult{SessionID: sessionID}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "sess1", sawID)
}

func TestUnknownSessionIDNotRetained(t *testing.T) {
	c := NewCoordinator()

	_, _, err := c.SaveOnce(context.Background(), func(ctx context.Context, sessionID string) (*SaveResult, error) {
		return &SaveResult{URL: "http://x/strip.jpg", SessionID: models.UnknownSessionID}, nil
	})
	require.NoError(t, err)
	assert.True(t, c.Saved())

	// The row never existed, so an edit retries as a fresh save.
	c.Edit()
	var sawID string
	_, _, err = c.SaveOnce(context.Background(), func(ctx context.Context, sessionID string) (*SaveResult, error) {
		sawID = sessionID
		return &SaveResult{SessionID: "sess9"}, nil
	})
	require.NoError(t, err)
	assert.Empty(t, sawID)
}
