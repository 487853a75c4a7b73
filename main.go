package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"medunit-portal/internal/config"
	"medunit-portal/internal/middleware"
	"medunit-portal/internal/models"
	"medunit-portal/internal/resetstore"
	"medunit-portal/internal/routes"
	"medunit-portal/pkg/logger"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:     cfg.LogLevel,
		Pretty:    !cfg.Production(),
		Output:    os.Stdout,
		Component: "server",
	})

	db, err := models.InitDB(cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	var resets resetstore.Store = resetstore.NewMemory()
	if cfg.Redis.Addr != "" {
		rdb, err := resetstore.Connect(ctx, resetstore.RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB, Timeout: cfg.Redis.Timeout})
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer rdb.Close()
		resets = resetstore.NewRedis(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("reset tokens stored in redis")
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Deps{DB: db, Cfg: cfg, Resets: resets, Log: log})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped")
}
