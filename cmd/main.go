package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"TalentDesk/server/internal/appMiddleware"
	"TalentDesk/server/internal/bulk"
	"TalentDesk/server/internal/config"
	"TalentDesk/server/internal/db"
	"TalentDesk/server/internal/extract"
	"TalentDesk/server/internal/handlers"
	"TalentDesk/server/internal/logger"
	"TalentDesk/server/internal/pool"
	"TalentDesk/server/internal/services"
	"TalentDesk/server/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Development); err != nil {
		log.Fatalf("Failed to init logger: %s\n", err)
	}

	ctx := context.Background()
	if err := db.InitDB(ctx, cfg.DatabaseURL); err != nil {
		logger.Log.Fatalf("Failed to connect to database: %s", err)
	}
	defer db.Pool.Close()

	blobs, err := newStore(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to init storage: %s", err)
	}

	extractor, err := newExtractor(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to init extractor: %s", err)
	}

	chatService := services.NewChatService()
	supportService := services.NewSupportService()
	clientPool := pool.NewPool(chatService)
	engine := bulk.NewEngine(bulk.NewPgJobStore(), extractor, blobs, cfg.BulkMaxWorkers)

	handlers.Init(chatService, supportService, engine, clientPool, blobs, cfg.JWTSecret)

	r := chi.NewRouter()

	r.Use(appMiddleware.CorsMiddleware)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.AuthMiddleware(cfg.JWTSecret))

		r.Post("/api/chat/rooms", handlers.CreateRoom)
		r.Get("/api/chat/rooms", handlers.GetRooms)
		r.Patch("/api/chat/rooms/{id}/pin", handlers.PinRoom)
		r.Get("/api/chat/rooms/{id}/messages", handlers.GetRoomMessages)
		r.Post("/api/chat/rooms/{id}/messages", handlers.PostRoomMessage)
		r.Post("/api/chat/rooms/{id}/messages/attachment", handlers.PostRoomAttachmentMessage)
		r.Post("/api/chat/upload", handlers.UploadChatFile)

		r.Get("/api/support/my-conversation", handlers.MyConversation)
		r.Post("/api/support/send-message", handlers.SendSupportMessage)
		r.Get("/api/support/conversations", handlers.ListConversations)
		r.Get("/api/support/conversations/{id}/messages", handlers.GetConversationMessages)
		r.Post("/api/support/conversations/{id}/reply", handlers.ReplyToConversation)
		r.Patch("/api/support/conversations/{id}/status", handlers.SetConversationStatus)

		r.Post("/api/admin/bulk-resume-upload", handlers.BulkResumeUpload)
		r.Get("/api/admin/bulk-upload-jobs/{jobId}/status", handlers.BulkJobStatus)
		r.Get("/api/admin/bulk-upload-jobs/{jobId}/error-report", handlers.BulkJobErrorReport)
	})

	r.Get("/ws/chat", handlers.WebSocketHandler)

	if cfg.StorageBackend == "local" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.StorageDir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	port := ":" + cfg.HTTPPort
	srv := &http.Server{
		Addr:         port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Log.Infof("Server started on port %s", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %s", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	logger.Log.Infof("Stopping the server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatalf("Server shutdown error: %s", err)
	}
	logger.Log.Infof("Server has been successfully stopped")
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == "s3" {
		return storage.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket)
	}
	return storage.NewLocalStore(cfg.StorageDir, cfg.StorageBaseURL)
}

func newExtractor(ctx context.Context, cfg *config.Config) (extract.Extractor, error) {
	if cfg.DocAIProcessorID != "" {
		return extract.NewDocAIExtractor(ctx, cfg.DocAIProjectID, cfg.DocAILocation, cfg.DocAIProcessorID)
	}
	return extract.NewHeuristicExtractor(), nil
}
