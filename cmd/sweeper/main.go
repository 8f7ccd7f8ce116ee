// cmd/sweeper/main.go is the expiry sweep service: it periodically
// archives and deletes lobbies past their expiry and pushes the archive
// records onto a Redis queue for analytics consumers. The API server
// already gates every read and join on expiry lazily, so running the
// sweeper is optional; it only reclaims storage.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/letsqueue/letsqueue/internal/cache"
	"github.com/letsqueue/letsqueue/internal/database"
	"github.com/letsqueue/letsqueue/internal/lobby"
	"github.com/letsqueue/letsqueue/internal/models"
)

func main() {
	logger := logrus.New()

	pool := database.ConnectDB()
	store := database.NewStore(pool)
	if err := store.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	svc := lobby.NewService(store, logger)

	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, archive events will not be published: %v", err)
	} else {
		svc.OnPublicArchived = func(ctx context.Context, stats *models.ArchivedPublicLobbyStats) {
			if err := cache.PublishArchive(ctx, cache.ArchiveRecord{Kind: models.KindPublic, Public: stats}); err != nil {
				logger.Errorf("failed to publish archive event: %v", err)
			}
		}
		svc.OnPrivateArchived = func(ctx context.Context, stats *models.ArchivedPrivateLobbyStats) {
			if err := cache.PublishArchive(ctx, cache.ArchiveRecord{Kind: models.KindPrivate, Private: stats}); err != nil {
				logger.Errorf("failed to publish archive event: %v", err)
			}
		}
	}

	interval := 60 * time.Second
	if s := os.Getenv("SWEEP_INTERVAL_SEC"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			interval = time.Duration(v) * time.Second
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	logger.Infof("letsqueue-sweeper started, interval %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("letsqueue-sweeper shutting down")
			return
		case <-ticker.C:
			swept, err := svc.SweepExpired(ctx)
			if err != nil {
				logger.Errorf("sweep failed: %v", err)
				continue
			}
			if swept > 0 {
				logger.Infof("swept %d expired lobbies", swept)
			}
		}
	}
}
