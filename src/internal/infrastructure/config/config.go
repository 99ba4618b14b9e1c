package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
	_ "time/tzdata" // 容器映像可能沒有系統時區資料庫

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config 積分 worker 的完整配置，全部來自環境變數
type Config struct {
	DB       DBConfig
	Log      LogConfig
	Worker   WorkerConfig
	Rewards  RewardsConfig
	Timezone string `env:"APP_TIMEZONE" envDefault:"Asia/Taipei"`
}

// DBConfig 資料庫配置
type DBConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DSN             string        `env:"DB_DSN" envDefault:"member_rewards.db"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	SlowThreshold   time.Duration `env:"DB_SLOW_THRESHOLD" envDefault:"200ms"`
	LogLevel        string        `env:"DB_LOG_LEVEL" envDefault:"warn"`
}

// LogConfig 日誌配置
type LogConfig struct {
	Level        string        `env:"LOG_LEVEL" envDefault:"info"`
	Dev          bool          `env:"LOG_DEV"`
	FilePath     string        `env:"LOG_FILE"`
	MaxAge       time.Duration `env:"LOG_MAX_AGE" envDefault:"168h"`
	RotationTime time.Duration `env:"LOG_ROTATION_TIME" envDefault:"24h"`
}

// WorkerConfig 佇列與 worker 配置
type WorkerConfig struct {
	Queue        string        `env:"QUEUE_NAME" envDefault:"app-point"`
	QueueSize    int           `env:"QUEUE_SIZE" envDefault:"1024"`
	Concurrency  int           `env:"WORKER_CONCURRENCY" envDefault:"4"`
	JobTimeout   time.Duration `env:"JOB_TIMEOUT" envDefault:"60s"`
	MaxTries     uint          `env:"JOB_MAX_TRIES" envDefault:"3"`
	RetryBackoff time.Duration `env:"JOB_RETRY_BACKOFF" envDefault:"5s"`
}

// RewardsConfig 積分規則配置
type RewardsConfig struct {
	LevelPointsRatio decimal.Decimal `env:"LEVEL_POINTS_RATIO" envDefault:"1"`
	CatalogFile      string          `env:"TASK_CATALOG_FILE"`
}

// Load 讀取 .env（若存在）後解析環境變數
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse 只解析環境變數
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 檢查無法由型別保證的約束
func (c *Config) Validate() error {
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be >= 1, got %d", c.Worker.Concurrency)
	}
	if c.Worker.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be >= 1, got %d", c.Worker.QueueSize)
	}
	if c.Worker.MaxTries < 1 {
		return fmt.Errorf("JOB_MAX_TRIES must be >= 1, got %d", c.Worker.MaxTries)
	}
	if c.Worker.JobTimeout <= 0 {
		return fmt.Errorf("JOB_TIMEOUT must be positive, got %s", c.Worker.JobTimeout)
	}
	if c.Rewards.LevelPointsRatio.IsNegative() {
		return fmt.Errorf("LEVEL_POINTS_RATIO must be >= 0, got %s", c.Rewards.LevelPointsRatio)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location 日曆日計算使用的時區
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
