// Package main is the entry point for the Derivaventura game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	"github.com/derivaventura/server/internal/api"
	"github.com/derivaventura/server/internal/auth"
	"github.com/derivaventura/server/internal/domain/enemy"
	"github.com/derivaventura/server/internal/domain/level"
	"github.com/derivaventura/server/internal/engine"
	"github.com/derivaventura/server/internal/infra/cache"
	"github.com/derivaventura/server/internal/infra/storage"
	"github.com/derivaventura/server/internal/network"
	"github.com/derivaventura/server/internal/platform/config"
	"github.com/derivaventura/server/internal/platform/logger"
	"github.com/derivaventura/server/internal/platform/metrics"
)

func main() {
	appLogger := logger.NewLogger()
	appLogger.Info("Initializing Derivaventura authoritative server...")

	cfg := config.Load()

	appLogger.Info("Initializing SQLite database %q...", cfg.DBPath)
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := storage.Seed(ctx, db); err != nil {
		appLogger.Error("Failed to seed database: %v", err)
		os.Exit(1)
	}

	playerRepo := storage.NewPlayerRepository(db)
	matchRepo := storage.NewMatchRepository(db)
	questionRepo := storage.NewQuestionRepository(db)
	dailyRepo := storage.NewDailyQuestionRepository(db)
	enemyTypeRepo := storage.NewEnemyTypeRepository(db)

	defs, err := enemyTypeRepo.All(ctx)
	if err != nil || len(defs) == 0 {
		appLogger.Warn("Could not load enemy types from database, using built-in set: %v", err)
		defs = enemy.DefaultDefs()
	}
	catalog, err := enemy.NewCatalog(defs)
	if err != nil {
		appLogger.Error("Invalid enemy catalog: %v", err)
		os.Exit(1)
	}

	appLogger.Info("Bootstrapping game engine (tick %v)...", cfg.TickRate)
	gameEngine := engine.New(engine.Config{
		InitialLives:         cfg.InitialLives,
		MaxOnScreen:          cfg.MaxOnScreen,
		FreezeTicks:          cfg.FreezeTicks,
		RestTicks:            cfg.RestTicks,
		StartingBombs:        cfg.StartingBombs,
		StartingFreezes:      cfg.StartingFreezes,
		StrictActiveQuestion: cfg.StrictActiveQuestion,
	}, cfg.TickRate, level.DefaultLevels(), catalog, questionRepo, playerRepo, matchRepo, appLogger)

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(appLogger)
	go hub.Run(ctx)

	tokens := auth.NewStore(cfg.TokenTTL)
	rankingCache := cache.NewMemory[[]storage.RankingEntry](cfg.RankingCacheTTL)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	apiServer := api.NewServer(cfg, appLogger, playerRepo, matchRepo, dailyRepo, tokens, rankingCache, rng)
	apiServer.StartLimiterCleanup(ctx.Done())

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	}))

	apiServer.Mount(router)
	router.GET("/ws", network.ServeWS(hub, gameEngine, tokens, cfg.ActionRPS, cfg.ActionBurst))
	router.GET("/metrics", gin.WrapF(metrics.Handler()))
	router.GET("/metrics/prometheus", gin.WrapF(metrics.PrometheusHandler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": gameEngine.Registry().Count()})
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		appLogger.Info("Shutdown signal received, shutting down gracefully...")

		gameEngine.Shutdown()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Warn("HTTP server shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	appLogger.Info("HTTP API & WS server listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		appLogger.Error("Server failed: %v", err)
		os.Exit(1)
	}
	<-idleConnsClosed
	appLogger.Info("Server shutdown complete")
}
