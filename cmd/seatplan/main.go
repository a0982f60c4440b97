// Command seatplan serves seating-plan editor sessions over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arloliu/seatplan/internal/api"
	"github.com/arloliu/seatplan/internal/blobstore"
	"github.com/arloliu/seatplan/internal/logging"
	"github.com/arloliu/seatplan/types"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before reading the environment")
	flag.Parse()

	cfg, err := api.LoadServerConfig(*configPath, *envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("seatplan stopped", "error", err)
	}
}

func run(ctx context.Context, cfg api.ServerConfig, logger types.Logger) error {
	blobs := openBlobStore(ctx, cfg, logger)
	if closer, ok := blobs.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("close blob store", "error", err)
			}
		}()
	}

	if mem, ok := blobs.(*blobstore.Memory); ok {
		go sweep(ctx, mem, logger)
	}

	srv, err := api.NewServer(cfg, blobs, api.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	return srv.Start(ctx)
}

// openBlobStore dials Redis when enabled and falls back to process memory.
func openBlobStore(ctx context.Context, cfg api.ServerConfig, logger types.Logger) blobstore.Store {
	if !cfg.Redis.Enabled {
		logger.Info("using in-memory artifact store")
		return blobstore.NewMemory(nil)
	}

	store, err := blobstore.DialRedis(ctx, cfg.Redis.RedisOptions)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory artifact store", "addr", cfg.Redis.Addr, "error", err)
		return blobstore.NewMemory(nil)
	}
	logger.Info("using redis artifact store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)

	return store
}

// sweep drops expired in-memory artifacts until ctx is done.
func sweep(ctx context.Context, mem *blobstore.Memory, logger types.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := mem.Sweep(); n > 0 {
				logger.Debug("expired artifacts swept", "removed", n, "remaining", mem.Len())
			}
		}
	}
}
