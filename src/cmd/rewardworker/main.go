// Command rewardworker 積分 worker：從輸入讀取積分任務，投遞到 app-point 佇列並交給積分引擎處理。
//
// 每行一個 JSON：{"kind":"earn","job":{"member_id":1001,"task_code":"daily_checkin"}}
// 輸入讀完後處理完剩餘任務即退出；收到 SIGINT/SIGTERM 時提前停止。
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackyeh168/member_rewards/src/internal/infrastructure/config"
	"github.com/jackyeh168/member_rewards/src/internal/infrastructure/logging"
	"go.uber.org/zap"
)

func main() {
	var envFile, jobsPath string
	flag.StringVar(&envFile, "env", ".env", "dotenv file (optional)")
	flag.StringVar(&jobsPath, "jobs", "-", "JSON lines job file, - for stdin")
	flag.Parse()

	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:        cfg.Log.Level,
		Dev:          cfg.Log.Dev,
		FilePath:     cfg.Log.FilePath,
		MaxAge:       cfg.Log.MaxAge,
		RotationTime: cfg.Log.RotationTime,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	in, closeInput, err := openJobs(jobsPath)
	if err != nil {
		logger.Fatal("open jobs input", zap.Error(err))
	}
	defer closeInput()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, in, logger); err != nil {
		logger.Error("reward worker stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("goodbye")
}

func openJobs(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
