package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/relay"
	"github.com/WarrenDz/scrolly-story-animations/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints, the relay hub for WebSocket
// upgrades and a shutdownFunc for graceful shutdown.
func NewServer(addr string, storyH *StoryHandler, tracksH *TracksHandler, hub *relay.Hub, frontendDir string, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 1b. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Story Endpoints
	mux.HandleFunc("GET /api/story", storyH.HandleStory)
	mux.HandleFunc("GET /api/story/slides/{index}", storyH.HandleSlide)
	mux.HandleFunc("GET /api/state", storyH.HandleState)
	mux.HandleFunc("POST /api/navigate", storyH.HandleNavigate)

	// 3. Track Endpoints
	if tracksH != nil {
		mux.HandleFunc("GET /api/tracks", tracksH.HandleList)
		mux.HandleFunc("GET /api/tracks/{id}", tracksH.HandleTrack)
		mux.HandleFunc("GET /api/tracks/{id}/observations", tracksH.HandleObservations)
		mux.HandleFunc("GET /api/tracks/{id}/density", tracksH.HandleDensity)
	}

	// 4. Logs Endpoint
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 5. Relay WebSocket
	mux.HandleFunc("GET /ws", hub.ServeWS)

	// 6. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	// 7. Static Frontend Serving (SPA)
	if frontendDir != "" {
		spaFS := &spaFileSystem{root: http.Dir(frontendDir)}
		mux.Handle("/", http.FileServer(spaFS))
	}

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
