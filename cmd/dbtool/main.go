package main

import (
	"context"
	"flag"

	"github.com/joho/godotenv"

	"pipeline-profile-service/internal/adapters/cache"
	"pipeline-profile-service/internal/adapters/repositories"
	"pipeline-profile-service/internal/config"
	"pipeline-profile-service/internal/platform/db"
	"pipeline-profile-service/internal/platform/log"
)

func main() {
	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/profiles.json"), "profile documents to load")
	invalidate := flag.String("invalidate", "", "drop cached results of this route")
	prune := flag.Duration("prune", 0, "drop cached results older than this age")
	flag.Parse()

	envErr := godotenv.Load()
	if err := log.Init(false); err != nil {
		panic(err)
	}
	defer log.Sync()
	if envErr != nil {
		log.Infow("no .env file found, using environment variables")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatalw("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatalw("open database", "err", err)
	}
	defer conn.Close()

	dialect := db.DialectOf(databaseURL)
	ctx := context.Background()

	log.Infow("initializing database schema", "db", dialect.String())
	if err := repositories.InitSchema(conn, dialect); err != nil {
		log.Fatalw("schema initialization failed", "err", err)
	}

	if *invalidate != "" {
		n, err := cache.NewSQLResultCache(conn, dialect).InvalidateRoute(ctx, *invalidate)
		if err != nil {
			log.Fatalw("invalidate cache failed", "err", err)
		}
		log.Infow("cache invalidated", "route", *invalidate, "rows", n)
		return
	}

	if *prune > 0 {
		n, err := cache.NewSQLResultCache(conn, dialect).Prune(ctx, *prune)
		if err != nil {
			log.Fatalw("prune cache failed", "err", err)
		}
		log.Infow("cache pruned", "older_than", prune.String(), "rows", n)
		return
	}

	log.Infow("seeding database", "path", *seedPath)
	n, err := repositories.SeedFromJSON(ctx, repositories.NewSQLProfileRepository(conn, dialect), *seedPath)
	if err != nil {
		log.Fatalw("seeding failed", "err", err)
	}
	log.Infow("seeding complete", "profiles", n)
}
