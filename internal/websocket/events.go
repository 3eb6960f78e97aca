package websocket

import (
	"time"

	"photobooth-app/internal/models"
)

// BoothEvents pushes capture and save progress for one booth to its
// connected clients. It satisfies the capture engine's event sink.
type BoothEvents struct {
	Hub     *Hub
	BoothID string
}

func NewBoothEvents(hub *Hub, boothID string) *BoothEvents {
	return &BoothEvents{Hub: hub, BoothID: boothID}
}

func (e *BoothEvents) send(msg *Message) {
	msg.BoothID = e.BoothID
	msg.Timestamp = time.Now()
	select {
	case e.Hub.Broadcast <- msg:
	default:
		// Never let a saturated hub stall the countdown cadence.
	}
}

func (e *BoothEvents) CountdownTick(shot, remaining int) {
	e.send(&Message{Type: MSG_COUNTDOWN_TICK, Shot: shot, Remaining: remaining})
}

func (e *BoothEvents) Flash(shot int) {
	e.send(&Message{Type: MSG_FLASH, Shot: shot})
}

func (e *BoothEvents) ShotCaptured(shot int, photo *models.Photo) {
	msg := &Message{Type: MSG_SHOT_CAPTURED, Shot: shot}
	if photo != nil {
		msg.PhotoID = photo.ID
	}
	e.send(msg)
}

func (e *BoothEvents) SequenceComplete(photos []*models.Photo) {
	e.send(&Message{Type: MSG_SEQUENCE_COMPLETE, Shot: len(photos)})
}

func (e *BoothEvents) CaptureError(err error) {
	e.send(&Message{Type: MSG_CAPTURE_ERROR, Error: err.Error()})
}

func (e *BoothEvents) SaveStarted() {
	e.send(&Message{Type: MSG_SAVE_STARTED})
}

func (e *BoothEvents) SaveFinished(sessionID string) {
	e.send(&Message{Type: MSG_SAVE_FINISHED, SessionID: sessionID})
}
