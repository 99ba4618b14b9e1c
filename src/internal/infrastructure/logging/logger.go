package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日誌配置
type Config struct {
	Level string // debug | info | warn | error
	Dev   bool   // 開發模式：彩色 console 輸出

	// FilePath 非空時同時寫入按日輪轉的 JSON 日誌檔
	FilePath     string
	MaxAge       time.Duration
	RotationTime time.Duration
}

// New 建立 zap logger
//
// 開發模式使用 zap 的 development 配置；否則 stdout 輸出 ISO8601 時間的 JSON。
func New(cfg Config) (*zap.Logger, error) {
	level := ParseLevel(cfg.Level)
	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}

	var console zapcore.Core
	if cfg.Dev {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		console = zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stdout), level)
	} else {
		console = zapcore.NewCore(zapcore.NewJSONEncoder(productionEncoderConfig()), zapcore.Lock(os.Stdout), level)
	}

	if cfg.FilePath == "" {
		return zap.New(console, opts...), nil
	}

	sink, err := newRotatingFile(cfg)
	if err != nil {
		return nil, err
	}
	file := zapcore.NewCore(zapcore.NewJSONEncoder(productionEncoderConfig()), zapcore.AddSync(sink), level)
	return zap.New(zapcore.NewTee(console, file), opts...), nil
}

// ParseLevel 未知值按 info 處理
func ParseLevel(l string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func productionEncoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderCfg
}

// newRotatingFile 以 <path>.YYYYMMDD 命名輪轉，<path> 為指向當前檔案的軟連結
func newRotatingFile(cfg Config) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	rotation := cfg.RotationTime
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}

	w, err := rotatelogs.New(
		cfg.FilePath+".%Y%m%d",
		rotatelogs.WithLinkName(cfg.FilePath),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(rotation),
	)
	if err != nil {
		return nil, fmt.Errorf("open rotating log file: %w", err)
	}
	return w, nil
}
