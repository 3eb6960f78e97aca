package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"photobooth-app/internal/booth"
	"photobooth-app/internal/capture"
	"photobooth-app/internal/crop"
	"photobooth-app/internal/models"
	"photobooth-app/internal/strip"
	ws "photobooth-app/internal/websocket"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

const maxUploadBytes = 32 << 20

// formInt reads the i-th value of a repeated form field, 0 if absent or
// malformed.
func formInt(values []string, i int) int {
	if i >= len(values) {
		return 0
	}
	v, err := strconv.Atoi(values[i])
	if err != nil {
		return 0
	}
	return v
}

func generateBoothID() string {
	b := make([]byte, 6)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func (app *App) boothFor(id string) *boothState {
	app.mu.Lock()
	defer app.mu.Unlock()
	state, ok := app.booths[id]
	if !ok {
		state = &boothState{
			renderer:    booth.NewRenderer(),
			coordinator: booth.NewCoordinator(),
		}
		app.booths[id] = state
	}
	return state
}

func (app *App) lookupBooth(id string) (*boothState, bool) {
	app.mu.RLock()
	defer app.mu.RUnlock()
	state, ok := app.booths[id]
	return state, ok
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleUpload accepts up to 3 photos from the visitor's device. Each is
// center-cropped to the strip aspect and held in memory until save.
func (app *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		app.renderPage(w, uploadPageTemplate, app.pageData(r))
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	boothID := r.FormValue("boothId")
	if boothID == "" {
		boothID = generateBoothID()
	}
	state := app.boothFor(boothID)

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No photos provided")
		return
	}

	// Per-file crop adjustments, parallel to the photos field: width
	// first (zoom), then drag offsets relative to the centered default.
	cropXs := r.MultipartForm.Value["cropX"]
	cropYs := r.MultipartForm.Value["cropY"]
	cropWidths := r.MultipartForm.Value["cropWidth"]

	state.mu.Lock()
	defer state.mu.Unlock()
	for i, header := range files {
		if len(state.photos) >= models.StripPhotoCount {
			break
		}
		f, err := header.Open()
		if err != nil {
			log.Printf("Failed to open upload %s: %v", header.Filename, err)
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Could not decode %s", header.Filename))
			return
		}
		window, err := crop.NewWindow(img)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is too small", header.Filename))
			return
		}
		if width := formInt(cropWidths, i); width > 0 {
			window.SetWidth(width)
		}
		if dx, dy := formInt(cropXs, i), formInt(cropYs, i); dx != 0 || dy != 0 {
			window.Drag(dx, dy)
		}
		id := fmt.Sprintf("%s-%d", boothID, len(state.photos))
		state.photos = append(state.photos, window.Rasterize(id))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"boothId":    boothID,
		"photoCount": len(state.photos),
		"ready":      len(state.photos) == models.StripPhotoCount,
	})
}

type captureRequest struct {
	BoothID string `json:"boothId"`
	Facing  string `json:"facing"`
}

// handleCaptureStart kicks off the timed 3-shot sequence for a booth.
// Progress streams over the booth's websocket; the handler returns as
// soon as the sequence is underway. Without camera hardware attached the
// synthetic source supplies frames.
func (app *App) handleCaptureStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BoothID == "" {
		req.BoothID = generateBoothID()
	}
	state := app.boothFor(req.BoothID)

	// One sequence per booth at a time; a second trigger while the
	// countdown runs would interleave events on the same channel.
	state.mu.Lock()
	if state.capturing {
		state.mu.Unlock()
		writeError(w, http.StatusConflict, "Capture already in progress")
		return
	}
	state.capturing = true
	state.mu.Unlock()

	facing := capture.FacingFront
	if req.Facing == "back" {
		facing = capture.FacingBack
	}

	go func() {
		defer func() {
			state.mu.Lock()
			state.capturing = false
			state.mu.Unlock()
		}()
		events := ws.NewBoothEvents(app.hub, req.BoothID)
		engine := capture.NewEngine(capture.NewSyntheticSource(facing), events)
		photos, err := engine.Run(context.Background())
		if err != nil {
			log.Printf("Capture sequence failed for booth %s: %v", req.BoothID, err)
			return
		}
		state.mu.Lock()
		state.photos = photos
		state.mu.Unlock()
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"boothId": req.BoothID})
}

// stripOptions are the render knobs shared by the render, save, and
// update endpoints.
type stripOptions struct {
	Filter  models.FilterType
	Frame   models.FrameType
	Caption models.CaptionStyle
}

func parseStripOptions(get func(string) string) (stripOptions, error) {
	opts := stripOptions{
		Filter: models.FilterRaw,
		Frame:  models.FrameNone,
		Caption: models.CaptionStyle{
			Font:      models.FontVintage,
			TextColor: models.DefaultTextColor,
		},
	}

	var err error
	if v := get("filter"); v != "" {
		if opts.Filter, err = models.ParseFilter(v); err != nil {
			return opts, err
		}
	}
	if v := get("frame"); v != "" {
		if opts.Frame, err = models.ParseFrame(v); err != nil {
			return opts, err
		}
	}
	if v := get("font"); v != "" {
		if opts.Caption.Font, err = models.ParseFontStyle(v); err != nil {
			return opts, err
		}
	}
	if v := get("textColor"); v != "" {
		if opts.Caption.TextColor, err = models.ParseHexColor(v); err != nil {
			return opts, err
		}
	}
	caption := get("caption")
	if len(caption) > models.MaxCaptionLen {
		caption = caption[:models.MaxCaptionLen]
	}
	opts.Caption.Text = caption
	return opts, nil
}

// handleStripRender composites the strip for the current options and
// streams the JPEG back, either inline for preview or as an attachment
// for download.
func (app *App) handleStripRender(w http.ResponseWriter, r *http.Request) {
	state, ok := app.lookupBooth(r.URL.Query().Get("boothId"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown booth")
		return
	}

	opts, err := parseStripOptions(r.URL.Query().Get)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state.mu.Lock()
	photos := state.photos
	state.mu.Unlock()

	img, fresh, err := state.renderer.Render(photos, opts.Filter, opts.Frame, opts.Caption)
	if err != nil {
		if errors.Is(err, strip.ErrIncompleteStrip) {
			writeError(w, http.StatusConflict, "Strip needs 3 photos")
			return
		}
		log.Printf("Render failed: %v", err)
		img = strip.Placeholder()
	}
	if !fresh && err == nil {
		// A newer render superseded this one; serve its output instead.
		if latest := state.renderer.Latest(); latest != nil {
			img = latest
		}
	}

	data, err := strip.EncodeJPEG(img)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Encoding failed")
		return
	}

	// Re-rendering after a save means the strip changed; the next save
	// becomes an in-place update.
	state.coordinator.Edit()

	w.Header().Set("Content-Type", "image/jpeg")
	if r.URL.Query().Get("download") == "1" {
		name := fmt.Sprintf("retrivia-memory-%d.jpg", time.Now().UnixMilli())
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	}
	w.Write(data)
}

type saveRequest struct {
	BoothID     string `json:"boothId"`
	Filter      string `json:"filter"`
	Frame       string `json:"frame"`
	Caption     string `json:"caption"`
	Font        string `json:"font"`
	TextColor   string `json:"textColor"`
	MemoryNotes string `json:"memoryNotes"`
}

func (req *saveRequest) get(key string) string {
	switch key {
	case "filter":
		return req.Filter
	case "frame":
		return req.Frame
	case "caption":
		return req.Caption
	case "font":
		return req.Font
	case "textColor":
		return req.TextColor
	}
	return ""
}

// handleStripSave persists the current strip. Repeated triggers while a
// save is running, or after it succeeded, do nothing; a strip edited
// after saving goes through the update path and keeps its storage path.
func (app *App) handleStripSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, ok := app.lookupBooth(req.BoothID)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown booth")
		return
	}

	opts, err := parseStripOptions(req.get)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state.mu.Lock()
	photos := append([]*models.Photo(nil), state.photos...)
	state.mu.Unlock()

	img, _, err := state.renderer.Render(photos, opts.Filter, opts.Frame, opts.Caption)
	if err != nil {
		writeError(w, http.StatusConflict, "Strip needs 3 photos")
		return
	}
	composite, err := strip.EncodeJPEG(img)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Encoding failed")
		return
	}

	userID := app.auth.CurrentIdentity(r)
	events := ws.NewBoothEvents(app.hub, req.BoothID)
	events.SaveStarted()

	result, performed, err := state.coordinator.SaveOnce(r.Context(),
		func(ctx context.Context, savedID string) (*booth.SaveResult, error) {
			if savedID != "" {
				return app.gateway.Update(ctx, userID, savedID, composite, opts.Caption.Text, req.MemoryNotes)
			}
			return app.gateway.Save(ctx, userID, photos, composite, opts.Caption.Text, req.MemoryNotes)
		})
	if err != nil {
		if errors.Is(err, booth.ErrNotOwner) {
			writeError(w, http.StatusForbidden, "This strip belongs to another user")
			return
		}
		log.Printf("Save failed: %v", err)
		writeError(w, http.StatusBadGateway, "Save failed, please try again")
		return
	}
	if result == nil {
		// A save is already in flight for this strip.
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "saving"})
		return
	}

	events.SaveFinished(result.SessionID)
	if !performed {
		log.Printf("Duplicate save for booth %s ignored", req.BoothID)
	}
	writeJSON(w, http.StatusOK, result)
}

type updateRequest struct {
	SessionID   string `json:"sessionId"`
	Captions    string `json:"captions"`
	MemoryNotes string `json:"memoryNotes"`
}

// handleStripUpdate edits captions and memory notes on a saved session
// from the photobook. The stored composite is left as is.
func (app *App) handleStripUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "Missing session id")
		return
	}
	if len(req.Captions) > models.MaxCaptionLen {
		req.Captions = req.Captions[:models.MaxCaptionLen]
	}

	userID := app.auth.CurrentIdentity(r)
	result, err := app.gateway.Update(r.Context(), userID, req.SessionID, nil, req.Captions, req.MemoryNotes)
	if err != nil {
		if errors.Is(err, booth.ErrNotOwner) {
			writeError(w, http.StatusForbidden, "This session belongs to another user")
			return
		}
		log.Printf("Update failed for session %s: %v", req.SessionID, err)
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseDateFilter(q func(string) string) booth.DateFilter {
	var f booth.DateFilter
	if v, err := strconv.Atoi(q("year")); err == nil {
		f.Year = v
	}
	if v, err := strconv.Atoi(q("month")); err == nil && v >= 1 && v <= 12 {
		f.Month = time.Month(v)
	}
	if v, err := strconv.Atoi(q("day")); err == nil && v >= 1 && v <= 31 {
		f.Day = v
	}
	return f
}

// handleSessions lists the caller's saved sessions, newest first.
func (app *App) handleSessions(w http.ResponseWriter, r *http.Request) {
	userID := app.auth.CurrentIdentity(r)
	q := r.URL.Query()

	limit := 0
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		limit = v
	}

	sessions, err := app.gallery.List(userID, limit, parseDateFilter(q.Get))
	if err != nil {
		log.Printf("Failed to list sessions: %v", err)
		writeError(w, http.StatusInternalServerError, "Could not load sessions")
		return
	}
	if sessions == nil {
		sessions = []*models.StripSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// handleSessionDates returns the year/month/day choices for the
// photobook filter dropdowns.
func (app *App) handleSessionDates(w http.ResponseWriter, r *http.Request) {
	userID := app.auth.CurrentIdentity(r)

	opts, err := app.gallery.FilterOptionsFor(userID, parseDateFilter(r.URL.Query().Get))
	if err != nil {
		log.Printf("Failed to load capture dates: %v", err)
		writeError(w, http.StatusInternalServerError, "Could not load dates")
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// splitObjectPath pulls bucket and object path out of a URL like
// /storage/{bucket}/{path}, for both /storage/ and /thumbnail/.
func splitObjectPath(urlPath, prefix string) (bucket, objectPath string, ok bool) {
	rest := strings.TrimPrefix(urlPath, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// handleStorage serves stored objects.
func (app *App) handleStorage(w http.ResponseWriter, r *http.Request) {
	bucket, objectPath, ok := splitObjectPath(r.URL.Path, "/storage/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, err := app.store.Read(bucket, objectPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(objectPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// handleThumbnail serves cached gallery thumbnails.
func (app *App) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	bucket, objectPath, ok := splitObjectPath(r.URL.Path, "/thumbnail/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	maxW, maxH := uint(300), uint(533)
	if v, err := strconv.Atoi(r.URL.Query().Get("w")); err == nil && v > 0 {
		maxW = uint(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("h")); err == nil && v > 0 {
		maxH = uint(v)
	}

	data, err := app.thumbs.Thumbnail(app.store, bucket, objectPath, maxW, maxH)
	if err != nil {
		log.Printf("Thumbnail failed for %s/%s: %v", bucket, objectPath, err)
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// handleWebSocket upgrades the connection and subscribes the client to
// its booth's capture and save events.
func (app *App) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	boothID := r.URL.Query().Get("boothId")
	if boothID == "" {
		http.Error(w, "Missing boothId", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &ws.Client{
		Hub:     app.hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		BoothID: boothID,
	}
	app.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

func (app *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	app.auth.SignOut(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
