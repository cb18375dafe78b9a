package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pipeline-profile-service/internal/adapters/cache"
	"pipeline-profile-service/internal/adapters/render"
	"pipeline-profile-service/internal/adapters/repositories"
	"pipeline-profile-service/internal/adapters/survey"
	"pipeline-profile-service/internal/api"
	"pipeline-profile-service/internal/config"
	"pipeline-profile-service/internal/platform/db"
	"pipeline-profile-service/internal/platform/log"
	"pipeline-profile-service/internal/ports"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, survey service, renderers) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	if err := log.Init(config.Get("LOG_LEVEL", "info") == "debug"); err != nil {
		panic(err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Infow("no .env file found, using environment variables")
	}

	databaseURL := config.Get("DATABASE_URL", "data/app.db")
	seedPath := config.Get("SEED_PATH", "")
	port := config.Get("PORT", "8080")

	tuning, err := config.LoadTuning(config.Get("TUNING_PATH", "config/tuning.yaml"))
	if err != nil {
		log.Fatalw("load tuning", "err", err)
	}
	opts, err := tuning.ProfileOptions()
	if err != nil {
		log.Fatalw("profile options", "err", err)
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatalw("open database", "err", err)
	}
	defer conn.Close()

	dialect := db.DialectOf(databaseURL)
	if err := repositories.InitSchema(conn, dialect); err != nil {
		log.Fatalw("init schema", "err", err)
	}

	sqlRepo := repositories.NewSQLProfileRepository(conn, dialect)
	if seedPath != "" {
		n, err := repositories.SeedFromJSON(context.Background(), sqlRepo, seedPath)
		if err != nil {
			log.Fatalw("seed profiles", "path", seedPath, "err", err)
		}
		log.Infow("seeded profiles", "count", n)
	}

	// A remote survey service, when configured, replaces the local tables as the route source.
	var repo ports.ProfileRepository = sqlRepo
	if surveyURL := config.Get("SURVEY_URL", ""); surveyURL != "" {
		src, err := survey.NewHTTPSurveySource(surveyURL, os.Getenv("SURVEY_API_KEY"))
		if err != nil {
			log.Fatalw("survey source", "err", err)
		}
		repo = src
	}

	ttl := time.Duration(config.GetInt("CACHE_TTL_SECONDS", 3600)) * time.Second

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlCache := cache.NewSQLResultCache(conn, dialect)
	sqlCache.MaxAge = ttl
	var resultCache ports.ResultCache = sqlCache
	if redisURL := config.Get("REDIS_URL", ""); redisURL != "" {
		client, err := cache.DialRedis(context.Background(), redisURL)
		if err != nil {
			log.Fatalw("redis", "err", err)
		}
		defer client.Close()
		rc, err := cache.NewRedisResultCache(client, "profile:", ttl)
		if err != nil {
			log.Fatalw("redis cache", "err", err)
		}
		resultCache = rc
	} else {
		go sqlCache.Sweep(ctx, max(ttl/4, time.Minute))
	}

	router := api.NewRouter(api.Deps{
		Repo:      repo,
		Cache:     resultCache,
		Options:   opts,
		Renderers: []ports.ProfileRenderer{render.NewPlotRenderer(), render.NewChartRenderer()},
	})

	// Write timeout covers building and rendering the longest routes.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("shutdown", "err", err)
		}
	}()

	log.Infow("server listening", "addr", srv.Addr, "db", dialect.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalw("listen", "err", err)
	}
}
