package main

import (
	"context"
	"log"
	"net/http"

	"feedboard/cmd/api/auth"
	"feedboard/cmd/api/router"
	"feedboard/cmd/api/storage"
	"feedboard/cmd/internal/logger"
	"feedboard/config"
	"feedboard/db"
)

func main() {
	config.InitApp()
	logger.InitFromEnv("LOG_LEVEL")

	if err := db.Init(context.Background()); err != nil {
		log.Fatal("failed to initialize MongoDB:", err)
	}

	jwtMgr, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	cfg := config.GetConfig()
	store, err := storage.New(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}

	r, err := router.New(db.Database(), jwtMgr, store)
	if err != nil {
		log.Fatal(err)
	}

	if err := r.Run(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
