package main

import (
	"context"
	"log"
	"net/http"

	"github.com/bboykorg/filecloude/internal/api"
	"github.com/bboykorg/filecloude/internal/config"
	"github.com/bboykorg/filecloude/internal/database"
	"github.com/bboykorg/filecloude/internal/quota"
	"github.com/bboykorg/filecloude/internal/storage"
	"github.com/bboykorg/filecloude/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("Failed to ping the database: %v", err)
	}
	log.Println("Successfully connected to the database")

	localStorage, err := storage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to initialize local storage: %v", err)
	}
	log.Printf("Blobs will be stored in: %s", cfg.Storage.Path)
	log.Printf("Per-user storage ceiling: %s", quota.FormatBytes(cfg.Storage.QuotaBytes))

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewStore(dbpool, wsHub)
	server := api.NewServer(cfg, store, localStorage, wsHub)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/ws", server.ServeWsHandler)

	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/v1/auth/register", server.RegisterHandler)
	r.Post("/api/v1/auth/login", server.LoginHandler)
	r.Post("/api/v1/auth/refresh", server.RefreshTokenHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(server.AuthMiddleware)
		r.Get("/me", server.GetCurrentUserHandler)
		r.Get("/me/storage", server.GetStorageUsageHandler)
		r.Get("/files", server.ListFilesHandler)
		r.Post("/files", server.UploadFilesHandler)
		r.Get("/files/{filename}/download", server.DownloadFileHandler)
		r.Get("/files/{filename}/raw", server.RawFileHandler)
		r.Delete("/files/{filename}", server.DeleteFileHandler)
		r.Get("/events", server.GetEventsHandler)
		r.Get("/sessions", server.ListSessionsHandler)
		r.Delete("/sessions/{sessionId}", server.DeleteSessionHandler)
		r.Post("/sessions/terminate_all", server.TerminateAllSessionsHandler)
	})

	log.Println("Starting server on port :8080")
	if err := http.ListenAndServe(":8080", r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
