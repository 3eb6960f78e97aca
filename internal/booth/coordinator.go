package booth

import (
	"context"
	"sync"

	"photobooth-app/internal/models"
)

// saveState tracks where a strip is in its save lifecycle.
type saveState int

const (
	stateUnsaved saveState = iota
	stateInFlight
	stateSaved
)

// Coordinator serializes saves for one photostrip. The first SaveOnce
// performs the save; concurrent calls while it is in flight and calls
// after it succeeds are no-ops that report the original result. Edit
// resets a saved strip back to unsaved so the next SaveOnce becomes an
// in-place update.
type Coordinator struct {
	mu        sync.Mutex
	state     saveState
	sessionID string
	result    *SaveResult
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// SaveFunc performs the actual persistence. sessionID is empty for a
// first save and carries the saved id for an update after Edit.
type SaveFunc func(ctx context.Context, sessionID string) (*SaveResult, error)

// SaveOnce runs save unless a save is already in flight or done.
// The bool reports whether this call performed the work.
func (c *Coordinator) SaveOnce(ctx context.Context, save SaveFunc) (*SaveResult, bool, error) {
	c.mu.Lock()
	switch c.state {
	case stateInFlight:
		c.mu.Unlock()
		return nil, false, nil
	case stateSaved:
		result := c.result
		c.mu.Unlock()
		return result, false, nil
	}
	c.state = stateInFlight
	sessionID := c.sessionID
	c.mu.Unlock()

	result, err := save(ctx, sessionID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = stateUnsaved
		return nil, true, err
	}
	c.state = stateSaved
	c.result = result
	// A row-insert failure yields the sentinel id; keep the strip
	// re-saveable as a fresh session rather than an update.
	if result.SessionID != "" && result.SessionID != models.UnknownSessionID {
		c.sessionID = result.SessionID
	}
	return result, true, nil
}

// Edit marks a saved strip as modified so it can be saved again. The
// retained session id routes the next save through Update.
func (c *Coordinator) Edit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateSaved {
		c.state = stateUnsaved
		c.result = nil
	}
}

// SessionID returns the saved session id, or "" if never saved.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Saved reports whether the current strip state is persisted.
func (c *Coordinator) Saved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateSaved
}
