package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/matt-steen/attendance-tracker/pkg/config"
	"github.com/matt-steen/attendance-tracker/pkg/controller"
	"github.com/matt-steen/attendance-tracker/pkg/db"
	"github.com/matt-steen/attendance-tracker/pkg/ledger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const closeTimeout = 5 * time.Second

// backend is a ledger storage that holds resources until closed.
type backend interface {
	ledger.Storage
	io.Closer
}

type memoryBackend struct {
	*db.Memory
}

func (memoryBackend) Close() error { return nil }

func openStorage(ctx context.Context, cfg config.StorageConfig) (backend, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		r := db.NewRedis(cfg.RedisAddr, cfg.RedisPrefix)
		if err := r.Ping(ctx); err != nil {
			r.Close()

			return nil, err
		}

		return r, nil
	case config.BackendMemory:
		return memoryBackend{db.NewMemory()}, nil
	default:
		database, err := db.NewDatabase(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}

		return database, nil
	}
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error loading .env: %s\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	filePerms := 0o666

	logFile, err := os.OpenFile(cfg.Log.Path, os.O_RDWR|os.O_CREATE|os.O_APPEND, fs.FileMode(filePerms))
	if err != nil {
		panic(err)
	}

	defer logFile.Close()

	level, err := cfg.Log.ZerologLevel()
	if err != nil {
		panic(err)
	}

	zerolog.SetGlobalLevel(level)

	log.Logger = log.With().Caller().Logger().Output(zerolog.ConsoleWriter{
		Out: logFile, TimeFormat: "2006-01-02_15:04:05",
	})

	log.Info().Str("backend", cfg.Storage.Backend).Msg("starting application...")

	storage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening storage")
	}

	defer storage.Close()

	policy := ledger.PositionalIDs
	if cfg.Ledger.StableCardIDs {
		policy = ledger.StableIDs
	}

	store, err := ledger.Open(ctx, storage,
		ledger.WithLogger(log.Logger),
		ledger.WithCardIDPolicy(policy),
		ledger.WithDefaultTarget(cfg.Ledger.DefaultTargetPercentage),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading attendance")
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(ctx, closeTimeout)
		defer cancel()

		if err := store.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("attendance may not have been saved")
		}
	}()

	controller, err := controller.NewController(ctx, store)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating controller")
	}

	if err := controller.Go(); err != nil {
		log.Error().Err(err).Msg("application stopped")
	}
}
