package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jackyeh168/member_rewards/src/internal/infrastructure/queue"
	"go.uber.org/zap"
)

// jobLine 輸入中的一行
type jobLine struct {
	Kind queue.Kind      `json:"kind"`
	Job  json.RawMessage `json:"job"`
}

// feed 逐行讀取任務並投遞；格式錯誤的行記錄後跳過
func feed(ctx context.Context, in io.Reader, producer *queue.Producer, logger *zap.Logger) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := submit(ctx, producer, []byte(text)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("job line skipped", zap.Int("line", lineNo), zap.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read jobs: %w", err)
	}
	return nil
}

func submit(ctx context.Context, producer *queue.Producer, raw []byte) error {
	var line jobLine
	if err := json.Unmarshal(raw, &line); err != nil {
		return fmt.Errorf("decode line: %w", err)
	}

	switch line.Kind {
	case queue.KindEarn:
		var job queue.EarnJob
		if err := json.Unmarshal(line.Job, &job); err != nil {
			return fmt.Errorf("decode earn job: %w", err)
		}
		_, err := producer.TriggerTaskEarn(ctx, job)
		return err
	case queue.KindConsume:
		var job queue.ConsumeJob
		if err := json.Unmarshal(line.Job, &job); err != nil {
			return fmt.Errorf("decode consume job: %w", err)
		}
		_, err := producer.TriggerConsume(ctx, job)
		return err
	default:
		return fmt.Errorf("unknown kind %q", line.Kind)
	}
}
