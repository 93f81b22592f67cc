package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/WarrenDz/scrolly-story-animations/internal/api"
	"github.com/WarrenDz/scrolly-story-animations/pkg/bridge"
	"github.com/WarrenDz/scrolly-story-animations/pkg/config"
	"github.com/WarrenDz/scrolly-story-animations/pkg/controller"
	"github.com/WarrenDz/scrolly-story-animations/pkg/logging"
	"github.com/WarrenDz/scrolly-story-animations/pkg/relay"
	"github.com/WarrenDz/scrolly-story-animations/pkg/story"
	"github.com/WarrenDz/scrolly-story-animations/pkg/tracks"
	"github.com/WarrenDz/scrolly-story-animations/pkg/version"
)

var (
	configPath = flag.String("config", "configs/storymap.yaml", "Path to config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	mockMap    = flag.Bool("mock", false, "Record map directives instead of relaying them to embeds")
)

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Storymap Controller Started", "version", version.Version)

	st, err := initStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	stry, err := story.Load(cfg.Story.Path)
	if err != nil {
		return fmt.Errorf("failed to load story: %w", err)
	}
	slog.Info("Story loaded", "path", cfg.Story.Path, "slides", stry.Len())

	// The hub, bridge and controller form a loop: events flow hub -> controller,
	// directives flow controller -> bridge -> hub.
	hub := relay.NewHub(nil, relay.Options{
		AllowedOrigins: cfg.Relay.AllowedOrigins,
		SendBuffer:     cfg.Relay.SendBuffer,
	})
	var (
		mapView    bridge.MapView
		timeSlider bridge.TimeSlider
		layers     bridge.LayerController
	)
	if *mockMap {
		slog.Info("Running with mock bridge, directives are recorded only")
		mock := bridge.NewMock()
		mapView, timeSlider, layers = mock, mock, mock
	} else {
		wsBridge := bridge.NewWSBridge(hub)
		mapView, timeSlider, layers = wsBridge, wsBridge, wsBridge
	}

	ctrl := controller.New(controller.Options{
		Story:             stry,
		Map:               mapView,
		Time:              timeSlider,
		Layers:            layers,
		Tracks:            st,
		Mirror:            hub,
		AnimationDuration: time.Duration(cfg.Map.AnimationDuration),
		TrackLimit:        cfg.Tracks.DefaultLimit,
	})
	hub.SetSink(ctrl)
	ctrl.Start(ctx)

	return runServer(ctx, cfg, stry, ctrl, hub, st)
}

func initStore(cfg *config.Config) (tracks.Store, error) {
	dbConn, err := tracks.Init(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return tracks.NewSQLiteStore(dbConn), nil
}

func runServer(ctx context.Context, cfg *config.Config, stry *story.Story, ctrl *controller.Controller, hub *relay.Hub, st tracks.Store) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	storyH := api.NewStoryHandler(stry, ctrl, hub)
	tracksH := api.NewTracksHandler(st, cfg.Tracks.DensityResolution, cfg.Tracks.DefaultLimit)

	srv := api.NewServer(cfg.Server.Address, storyH, tracksH, hub, cfg.Server.FrontendDir, shutdownFunc)
	srv.Handler = loggingMiddleware(srv.Handler)

	slog.Info("Starting server", "addr", srv.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-quit:
			slog.Info("Shutting down server...")
		case <-gctx.Done():
			slog.Info("Context cancelled, shutting down...")
		}
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
