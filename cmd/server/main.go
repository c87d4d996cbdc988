package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/inamate/render-go/internal/asset"
	"github.com/inamate/inamate/render-go/internal/auth"
	"github.com/inamate/inamate/render-go/internal/config"
	"github.com/inamate/inamate/render-go/internal/export"
	mw "github.com/inamate/inamate/render-go/internal/middleware"
	"github.com/inamate/inamate/render-go/internal/preview"
	"github.com/inamate/inamate/render-go/internal/project"
	"github.com/inamate/inamate/render-go/internal/raster"
	"github.com/inamate/inamate/render-go/internal/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	snapshots := store.New(pool)
	if err := snapshots.Migrate(ctx); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	fonts, err := raster.LoadFonts(cfg.FontPath)
	if err != nil {
		slog.Error("load fonts", "error", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(cfg.JWTSecret, cfg.AdminKey)
	if err != nil {
		slog.Error("create auth service", "error", err)
		os.Exit(1)
	}
	if cfg.AdminKey == "" {
		slog.Warn("ADMIN_KEY not set, token issuing is disabled")
	}
	authHandler := auth.NewHandler(authService)

	images := asset.NewStore(cfg.AssetDir)
	assetHandler := asset.NewHandler(cfg.AssetDir, images)

	projectService := project.NewService(snapshots, images)
	projectHandler := project.NewHandler(projectService)

	hub := preview.NewHub(projectService)
	go hub.Run()
	projectService.OnChange(hub.Refresh)
	images.OnReady(func(string) { hub.RefreshAll() })

	exportHandler := export.NewHandler(projectService, images, fonts, cfg.MaxExportPixels)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/auth/token", authHandler.Token).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/documents", projectHandler.List).Methods("GET")
	api.HandleFunc("/documents", projectHandler.Create).Methods("POST")
	api.HandleFunc("/documents/{documentId}", projectHandler.Get).Methods("GET")
	api.HandleFunc("/documents/{documentId}", projectHandler.Save).Methods("PUT")
	api.HandleFunc("/documents/{documentId}", projectHandler.Delete).Methods("DELETE")
	api.HandleFunc("/documents/{documentId}/commands", projectHandler.Commands).Methods("GET")

	exports := r.PathPrefix("/export").Subrouter()
	exports.Use(authService.AuthMiddleware)
	exports.HandleFunc("/{documentId}.{format}", exportHandler.Export).Methods("POST", "OPTIONS")

	r.Handle("/ws/preview/{documentId}", preview.NewHandler(hub, authService.ValidateToken, originHosts(cfg.Origins())))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// originHosts turns allowed origins into the host patterns the websocket
// upgrade checks.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			slog.Warn("ignoring invalid origin", "origin", o)
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}
