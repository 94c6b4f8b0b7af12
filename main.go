package main

import (
	"context"
	"log"
	"time"

	"github.com/agribridge/agribridge/config"
	"github.com/agribridge/agribridge/models"
	"github.com/agribridge/agribridge/routes"
	"github.com/agribridge/agribridge/storage"
	"github.com/agribridge/agribridge/stores"
	"github.com/agribridge/agribridge/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	kv, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("failed to open storage backend %q: %v", cfg.StorageBackend, err)
	}

	regs := stores.NewRegistrationStore(kv)
	if err := regs.EnsureInitialized(); err != nil {
		log.Fatalf("failed to initialize registration store: %v", err)
	}
	sessions := stores.NewSessionStore(kv)
	posts := stores.NewPostStore(kv)

	// Pick up durable-tier session changes made by other processes sharing
	// the backend.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessions.Subscribe(func(rec *models.SessionRecord) {
		if rec == nil {
			utils.Sugar.Info("session destroyed")
			return
		}
		utils.Sugar.Infow("session changed", "email", rec.Email, "type", rec.Type)
	})
	sessions.StartWatch(ctx, time.Duration(cfg.SessionWatchSec)*time.Second)

	r := routes.SetupRouter(regs, sessions, posts)

	utils.Sugar.Infof("AgriBridge backend listening on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

func openStorage(cfg config.AppConfig) (storage.KV, error) {
	switch cfg.StorageBackend {
	case "mysql":
		return storage.OpenMySQL(cfg.MySQLDSN(), cfg.LogLevel)
	case "memory":
		return storage.NewMemory(), nil
	default:
		return storage.NewFile(cfg.DataDir)
	}
}
