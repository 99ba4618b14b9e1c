package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackyeh168/member_rewards/src/internal/application/rewards"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 任務最終結果
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRejected  = "rejected" // 業務校驗未通過，不重試
	OutcomeDead      = "dead"     // 內容不合法或重試耗盡
)

// Processor 積分引擎中 worker 需要的操作
type Processor interface {
	ProcessTaskEarn(ctx context.Context, cmd rewards.EarnCommand) (*rewards.Result, error)
	ProcessConsume(ctx context.Context, cmd rewards.ConsumeCommand) (*rewards.Result, error)
}

// Attempt 一條消息的處理結果
type Attempt struct {
	JobID     string
	Queue     string
	Kind      Kind
	Outcome   string
	Reason    string
	Attempts  int
	LastError string
	Payload   json.RawMessage
	At        time.Time
}

// AttemptRecorder 保存處理結果
type AttemptRecorder interface {
	Record(ctx context.Context, attempt Attempt) error
}

// WorkerConfig worker 配置
type WorkerConfig struct {
	Concurrency  int
	JobTimeout   time.Duration
	MaxTries     uint
	RetryBackoff time.Duration // 第一次重試前的等待，之後指數增長
}

// Worker 從佇列取出任務交給積分引擎
//
// 基礎設施錯誤按指數退避重試；業務拒絕與不合法的任務不重試。
type Worker struct {
	queue     Queue
	processor Processor
	recorder  AttemptRecorder
	cfg       WorkerConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewWorker recorder 可為 nil
func NewWorker(q Queue, processor Processor, recorder AttemptRecorder, cfg WorkerConfig, logger *zap.Logger) *Worker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 60 * time.Second
	}
	if cfg.MaxTries < 1 {
		cfg.MaxTries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:     q,
		processor: processor,
		recorder:  recorder,
		cfg:       cfg,
		logger:    logger.Named("worker"),
		now:       time.Now,
	}
}

// Run 啟動 Concurrency 個消費者，直到 ctx 取消或佇列關閉
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.Concurrency; i++ {
		g.Go(func() error {
			return w.consume(ctx, i)
		})
	}
	return g.Wait()
}

func (w *Worker) consume(ctx context.Context, id int) error {
	logger := w.logger.With(zap.Int("consumer", id))
	logger.Debug("consumer started")

	for {
		env, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || ctx.Err() != nil {
				logger.Debug("consumer stopped")
				return nil
			}
			return fmt.Errorf("dequeue: %w", err)
		}
		w.Handle(ctx, env)
	}
}

// Handle 處理一條消息並記錄結果
func (w *Worker) Handle(ctx context.Context, env Envelope) Attempt {
	attempt := Attempt{
		JobID:   env.ID,
		Queue:   env.Queue,
		Kind:    env.Kind,
		Payload: env.Payload,
	}
	fields := []zap.Field{
		zap.String("job_id", env.ID),
		zap.String("kind", string(env.Kind)),
	}

	dispatch, err := w.decode(env)
	if err != nil {
		attempt.Outcome = OutcomeDead
		attempt.LastError = err.Error()
		w.logger.Error("malformed job dropped", append(fields, zap.Error(err))...)
		return w.record(ctx, attempt)
	}

	operation := func() (*rewards.Result, error) {
		attempt.Attempts++
		jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
		defer cancel()

		res, err := dispatch(jobCtx)
		if err != nil {
			w.logger.Warn("job attempt failed", append(fields, zap.Int("attempt", attempt.Attempts), zap.Error(err))...)
			return nil, err
		}
		return res, nil
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(w.newBackOff()),
		backoff.WithMaxTries(w.cfg.MaxTries),
	)
	switch {
	case err != nil:
		attempt.Outcome = OutcomeDead
		attempt.LastError = err.Error()
		w.logger.Error("job dead", append(fields, zap.Int("attempts", attempt.Attempts), zap.Error(err))...)
	case !res.Success:
		attempt.Outcome = OutcomeRejected
		attempt.Reason = string(res.Reason)
		w.logger.Info("job rejected", append(fields, zap.String("reason", attempt.Reason))...)
	default:
		attempt.Outcome = OutcomeSucceeded
		w.logger.Info("job succeeded", append(fields,
			zap.Int64("points", res.Points),
			zap.Bool("replayed", res.Replayed),
		)...)
	}
	return w.record(ctx, attempt)
}

// decode 解析消息內容，返回執行函數
func (w *Worker) decode(env Envelope) (func(ctx context.Context) (*rewards.Result, error), error) {
	if _, err := shared.EntityIDFromString[jobMarker](env.ID, ErrInvalidJob); err != nil {
		return nil, fmt.Errorf("%w: job id %q", err, env.ID)
	}

	switch env.Kind {
	case KindEarn:
		var job EarnJob
		if err := json.Unmarshal(env.Payload, &job); err != nil {
			return nil, fmt.Errorf("%w: decode earn job: %v", ErrInvalidJob, err)
		}
		if err := job.Validate(); err != nil {
			return nil, err
		}
		return func(ctx context.Context) (*rewards.Result, error) {
			return w.processor.ProcessTaskEarn(ctx, job.command())
		}, nil

	case KindConsume:
		var job ConsumeJob
		if err := json.Unmarshal(env.Payload, &job); err != nil {
			return nil, fmt.Errorf("%w: decode consume job: %v", ErrInvalidJob, err)
		}
		if err := job.Validate(); err != nil {
			return nil, err
		}
		return func(ctx context.Context) (*rewards.Result, error) {
			return w.processor.ProcessConsume(ctx, job.command())
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidJob, env.Kind)
	}
}

func (w *Worker) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.cfg.RetryBackoff
	b.MaxInterval = 10 * w.cfg.RetryBackoff
	return b
}

func (w *Worker) record(ctx context.Context, attempt Attempt) Attempt {
	attempt.At = w.now().UTC()
	if w.recorder == nil {
		return attempt
	}
	// 關機時 ctx 已取消，結果仍要寫入
	if err := w.recorder.Record(context.WithoutCancel(ctx), attempt); err != nil {
		w.logger.Error("record job attempt failed", zap.String("job_id", attempt.JobID), zap.Error(err))
	}
	return attempt
}
