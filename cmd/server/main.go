package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/porodog/doodle-server/internal/game"
	"github.com/porodog/doodle-server/internal/migrations"
	"github.com/porodog/doodle-server/internal/shared/configs"
	"github.com/porodog/doodle-server/internal/shared/logger"
	"github.com/porodog/doodle-server/internal/storage"
	"github.com/rs/zerolog/log"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func registerGameRoutes(r *gin.Engine, registry game.RoomLister) {
	gameHandler := game.NewGameHandler(registry)
	r.GET("/ws", gameHandler.WebsocketHandler)
	r.GET("/rooms", gameHandler.ListRoomsHandler)
}

// loadWords returns the built-in tables, extended by the Postgres catalog when one is configured.
func loadWords(ctx context.Context, postgresURL string) (game.WordTable, error) {
	words := game.DefaultWords()
	if postgresURL == "" {
		return words, nil
	}

	if err := migrations.Migrate(postgresURL); err != nil {
		return nil, err
	}

	repo, err := storage.NewPostgresRepo(ctx, postgresURL)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	catalog, err := repo.LoadWordTable(ctx)
	if err != nil {
		return nil, err
	}
	return words.Merge(catalog), nil
}

func main() {
	envs, err := configs.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := logger.Setup(envs.LogLevel, envs.GinMode != gin.ReleaseMode); err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	gin.SetMode(envs.GinMode)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	words, err := loadWords(loadCtx, envs.PostgresURL)
	cancelLoad()
	if err != nil {
		log.Fatal().Err(err).Msg("loading word catalog")
	}
	for _, c := range game.Categories {
		log.Info().Str("category", string(c)).Int("words", len(words.Words(c))).Msg("word table ready")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer stop()

	registry := game.NewRoomRegistry(envs.Game, words, game.NewTickerGen())
	registryStarted := make(chan struct{})
	registryDone := make(chan struct{})
	go func() {
		registry.RegistryActor(ctx, registryStarted)
		close(registryDone)
	}()
	<-registryStarted

	r := CreateServer(envs.AllowedOrigins)
	registerGameRoutes(r, registry)

	srv := &http.Server{
		Addr:    ":" + envs.Port,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("couldn't start server")
		}
	}()
	log.Info().Str("port", envs.Port).Strs("origins", envs.AllowedOrigins).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("SIGTERM or SIGINT received, closing rooms before shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	<-registryDone
	log.Info().Msg("shutting down now")
}
