// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/letsqueue/letsqueue/internal/auth"
	"github.com/letsqueue/letsqueue/internal/cache"
	"github.com/letsqueue/letsqueue/internal/database"
	"github.com/letsqueue/letsqueue/internal/handlers"
	"github.com/letsqueue/letsqueue/internal/lobby"
	"github.com/letsqueue/letsqueue/internal/middleware"
	"github.com/letsqueue/letsqueue/internal/models"
)

func main() {
	auth.Init()

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Without a database the server runs on the in-memory store; lobbies
	// then live only as long as the process. Useful for local frontends.
	var store lobby.Store
	if os.Getenv("DATABASE_URL") != "" || os.Getenv("PG_HOST") != "" {
		pool := database.ConnectDB()
		pg := database.NewStore(pool)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		store = pg
		logger.Info("using postgres store")
	} else {
		store = lobby.NewMemoryStore()
		logger.Warn("no DATABASE_URL configured; using ephemeral in-memory store")
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

	srv := handlers.NewServer(svc, logger)

	mux := http.NewServeMux()

	// public lobby endpoints
	mux.HandleFunc("POST /api/public-lobbies", srv.CreatePublicLobbyHandler)
	mux.HandleFunc("GET /api/public-lobbies", srv.ListPublicLobbiesHandler)
	mux.HandleFunc("GET /api/public-lobbies/ranks", srv.RanksHandler)
	mux.HandleFunc("GET /api/public-lobbies/{id}", srv.GetPublicLobbyHandler)
	mux.HandleFunc("POST /api/public-lobbies/{id}/join", srv.JoinPublicLobbyHandler)
	mux.HandleFunc("POST /api/public-lobbies/{id}/leave", srv.LeavePublicLobbyHandler)
	mux.HandleFunc("DELETE /api/public-lobbies/{id}", srv.DeletePublicLobbyHandler)

	// private lobby endpoints
	mux.HandleFunc("POST /api/private-lobbies", srv.CreatePrivateLobbyHandler)
	mux.HandleFunc("GET /api/private-lobbies", srv.ListPrivateLobbiesHandler)
	mux.HandleFunc("GET /api/private-lobbies/by-code/{code}", srv.GetPrivateLobbyByCodeHandler)
	mux.HandleFunc("POST /api/private-lobbies/join/{code}", srv.JoinPrivateLobbyHandler)
	mux.HandleFunc("POST /api/private-lobbies/{id}/leave", srv.LeavePrivateLobbyHandler)
	mux.HandleFunc("DELETE /api/private-lobbies/{id}", srv.DeletePrivateLobbyHandler)

	// admin analytics endpoints
	mux.HandleFunc("POST /api/admin/login", srv.AdminLoginHandler)
	mux.HandleFunc("GET /api/admin/archives/public", srv.ListPublicArchivesHandler)
	mux.HandleFunc("GET /api/admin/archives/private", srv.ListPrivateArchivesHandler)

	handler := middleware.LogMiddleware(logger)(mux)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
