package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackyeh168/member_rewards/src/internal/application/rewards"
	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/infrastructure/config"
	"github.com/jackyeh168/member_rewards/src/internal/infrastructure/logging"
	"github.com/jackyeh168/member_rewards/src/internal/infrastructure/persistence"
	"github.com/jackyeh168/member_rewards/src/internal/infrastructure/queue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// run 組裝依賴並執行到輸入讀完或 ctx 取消
func run(ctx context.Context, cfg *config.Config, in io.Reader, logger *zap.Logger) error {
	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = persistence.Close(db) }()

	engine, err := newEngine(db, cfg, logger)
	if err != nil {
		return err
	}

	q := queue.NewMemoryQueue(cfg.Worker.Queue, cfg.Worker.QueueSize)
	producer := queue.NewProducer(q, cfg.Worker.Queue, nil, logger)
	worker := queue.NewWorker(q, engine, newAttemptRecorder(persistence.NewJobAttemptRepository(db)), queue.WorkerConfig{
		Concurrency:  cfg.Worker.Concurrency,
		JobTimeout:   cfg.Worker.JobTimeout,
		MaxTries:     cfg.Worker.MaxTries,
		RetryBackoff: cfg.Worker.RetryBackoff,
	}, logger)

	logger.Info("reward worker started",
		zap.String("queue", cfg.Worker.Queue),
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.String("db_driver", cfg.DB.Driver),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer q.Close()
		return feed(gctx, in, producer, logger)
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := persistence.Open(persistence.Config{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		SlowThreshold:   cfg.DB.SlowThreshold,
		LogLevel:        cfg.DB.LogLevel,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := persistence.AutoMigrate(db); err != nil {
		_ = persistence.Close(db)
		return nil, err
	}

	seeds := persistence.DefaultCatalogSeed()
	if cfg.Rewards.CatalogFile != "" {
		if seeds, err = persistence.LoadCatalogSeed(cfg.Rewards.CatalogFile); err != nil {
			_ = persistence.Close(db)
			return nil, err
		}
	}
	if err := persistence.SeedCatalog(ctx, db, seeds); err != nil {
		_ = persistence.Close(db)
		return nil, err
	}
	return db, nil
}

func newEngine(db *gorm.DB, cfg *config.Config, logger *zap.Logger) (*rewards.Engine, error) {
	levels, err := points.NewLevelPointsCalculator(cfg.Rewards.LevelPointsRatio)
	if err != nil {
		return nil, fmt.Errorf("level points ratio: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return rewards.NewEngine(rewards.Dependencies{
		TxManager:   persistence.NewGORMTransactionManager(db),
		Accounts:    persistence.NewPointAccountRepository(db),
		Ledger:      persistence.NewLedgerRepository(db),
		Catalog:     persistence.NewTaskCatalog(db),
		Completions: persistence.NewCompletionTracker(db),
		Growth:      persistence.NewGrowthTracker(db),
		LevelPoints: levels,
		Events:      logging.NewEventPublisher(logger),
		Logger:      logger,
		Location:    loc,
	}), nil
}
