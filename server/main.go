package main

import (
	"context"

	"github.com/gofiber/fiber/v3/log"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meikuraledutech/salbp"
	"github.com/meikuraledutech/salbp/config"
	"github.com/meikuraledutech/salbp/filestore"
	"github.com/meikuraledutech/salbp/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	store, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()

	app := newApp(store, newSessions(cfg.Seed), cfg.DefaultInstance)
	log.Infof("serving %s catalog, default instance %s", cfg.Store, cfg.DefaultInstance)
	log.Fatal(app.Listen(cfg.Addr))
}

// openStore wires the catalog named by cfg.Store behind the Store interface.
func openStore(ctx context.Context, cfg config.Config) (salbp.Store, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.New(pool)
		if err := store.CreateSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		return filestore.New(cfg.DataDir), func() {}, nil
	}
}
