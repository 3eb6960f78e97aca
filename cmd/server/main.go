package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"photobooth-app/internal/auth"
	"photobooth-app/internal/booth"
	"photobooth-app/internal/models"
	"photobooth-app/internal/storage"
	ws "photobooth-app/internal/websocket"
)

// Config is resolved from environment variables with local defaults.
type Config struct {
	Addr    string
	DataDir string
	DBPath  string
	BaseURL string
}

func loadConfig() Config {
	cfg := Config{
		Addr:    ":8080",
		DataDir: "data",
		DBPath:  "photobooth.db",
		BaseURL: "http://localhost:8080",
	}
	if v := os.Getenv("PHOTOBOOTH_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("PHOTOBOOTH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PHOTOBOOTH_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PHOTOBOOTH_BASE_URL"); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	return cfg
}

// boothState holds one visitor's in-progress strip before it is saved.
// Photos live here in memory only; nothing touches storage until save.
type boothState struct {
	mu          sync.Mutex
	photos      []*models.Photo
	capturing   bool
	renderer    *booth.Renderer
	coordinator *booth.Coordinator
}

// App is the main application struct
type App struct {
	cfg     Config
	db      *storage.DB
	store   *storage.DiskStore
	thumbs  *storage.ThumbnailCache
	auth    *auth.CookieProvider
	hub     *ws.Hub
	gateway *booth.Gateway
	gallery *booth.Gallery

	mu     sync.RWMutex
	booths map[string]*boothState
}

// NewApp creates and initializes the application
func NewApp(cfg Config) *App {
	hub := ws.NewHub()
	go hub.Run()

	db, err := storage.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	store, err := storage.NewDiskStore(cfg.DataDir, cfg.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}

	thumbs := storage.NewThumbnailCache()

	app := &App{
		cfg:     cfg,
		db:      db,
		store:   store,
		thumbs:  thumbs,
		auth:    auth.NewCookieProvider(exchangerFromEnv()),
		hub:     hub,
		gateway: booth.NewGateway(store, db, thumbs),
		gallery: booth.NewGallery(db),
		booths:  make(map[string]*boothState),
	}

	log.Println("Photobooth initialized")
	return app
}

// exchangerFromEnv picks the OAuth code exchanger. The dev exchanger
// treats the code itself as the user id, which keeps local runs
// self-contained; the callback flow and session handling are
// provider-agnostic.
func exchangerFromEnv() auth.CodeExchanger {
	return func(code string) (string, error) {
		return code, nil
	}
}

func main() {
	app := NewApp(loadConfig())
	defer app.db.Close()

	setupRoutes(app)

	log.Printf("Photobooth server starting on %s", app.cfg.BaseURL)
	log.Fatal(http.ListenAndServe(app.cfg.Addr, nil))
}

func setupRoutes(app *App) {
	// Pages
	http.HandleFunc("/", app.handleHome)
	http.HandleFunc("/booth", app.handleBoothPage)
	http.HandleFunc("/upload", app.handleUpload)
	http.HandleFunc("/photobook", app.handlePhotobook)
	http.HandleFunc("/login", app.handleLogin)

	// Auth
	http.HandleFunc("/auth/callback", app.auth.HandleCallback)
	http.HandleFunc("/logout", app.handleLogout)

	// Capture
	http.HandleFunc("/api/capture/start", app.handleCaptureStart)

	// Strip operations
	http.HandleFunc("/api/strip/render", app.handleStripRender)
	http.HandleFunc("/api/strip/save", app.handleStripSave)
	http.HandleFunc("/api/strip/update", app.handleStripUpdate)

	// Photobook queries
	http.HandleFunc("/api/sessions", app.handleSessions)
	http.HandleFunc("/api/sessions/dates", app.handleSessionDates)

	// Object serving
	http.HandleFunc("/storage/", app.handleStorage)
	http.HandleFunc("/thumbnail/", app.handleThumbnail)

	// Live capture events
	http.HandleFunc("/ws", app.handleWebSocket)
}
