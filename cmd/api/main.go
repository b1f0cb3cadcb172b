package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"spv-projection/internal/api"
	"spv-projection/internal/config"
	"spv-projection/internal/logging"
	"spv-projection/internal/store"
)

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("reading .env: %v", err)
	}
	svc := config.LoadService()

	logger, err := logging.New(svc.Env, os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if svc.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := []store.Option{store.WithPassphrase(svc.StorePassphrase)}
	st, err := store.Open(svc.StoreDir, opts...)
	if err != nil {
		logger.Fatal("failed to open scenario store", zap.String("dir", svc.StoreDir), zap.Error(err))
	}
	logger.Info("scenario store ready",
		zap.String("dir", st.Dir()),
		zap.Bool("encrypted", st.Encrypted()))

	router := api.NewRouter(svc, logger, st)

	// Start server
	addr := fmt.Sprintf(":%s", svc.Port)
	logger.Info("starting API server", zap.String("addr", addr), zap.String("env", svc.Env))
	if err := router.Run(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
