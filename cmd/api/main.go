package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/khanbek/khancloud/internal/auth"
	"github.com/khanbek/khancloud/internal/config"
	"github.com/khanbek/khancloud/internal/file"
	"github.com/khanbek/khancloud/internal/logger"
	"github.com/khanbek/khancloud/internal/server"
	"github.com/khanbek/khancloud/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logg.Fatalf("connect postgres: %v", err)
	}
	defer dbPool.Close()

	if err := storage.EnsureSchema(ctx, dbPool); err != nil {
		logg.Fatalf("ensure schema: %v", err)
	}

	blobStore, err := newBlobStore(ctx, cfg.Storage, logg)
	if err != nil {
		logg.Fatalf("init blob storage: %v", err)
	}

	authRepo := auth.NewRepository(dbPool)
	tokenService := auth.NewTokenService(cfg.Auth)
	authService := auth.NewService(authRepo, tokenService)

	fileRepo := file.NewRepository(dbPool)
	fileService := file.NewService(fileRepo, blobStore, authRepo)

	router := server.NewRouter(server.Dependencies{
		Config:       cfg,
		DB:           dbPool,
		TokenService: tokenService,
		AuthService:  authService,
		FileService:  fileService,
		BlobStore:    blobStore,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Infof("KhanCloud API listening on %s", cfg.Server.Address())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Infof("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Errorf("shutdown error: %v", err)
	}
}

func newBlobStore(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (file.BlobStore, error) {
	switch cfg.Driver {
	case config.DriverMinIO:
		store, err := storage.NewObjectStore(ctx, cfg.MinIO)
		if err != nil {
			return nil, err
		}
		logg.Infof("blob storage: minio bucket %s", cfg.MinIO.Bucket)
		return store, nil
	default:
		logg.Infof("blob storage: disk directory %s", cfg.UploadDir)
		return file.NewDiskStore(cfg.UploadDir)
	}
}
