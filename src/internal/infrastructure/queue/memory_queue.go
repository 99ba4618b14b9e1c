package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrQueueClosed 佇列已關閉且已取空
var ErrQueueClosed = errors.New("queue closed")

// Queue 至少一次投遞的任務佇列
type Queue interface {
	Enqueue(ctx context.Context, env Envelope) error

	// Dequeue 阻塞直到有消息、ctx 取消或佇列關閉
	Dequeue(ctx context.Context) (Envelope, error)
}

// MemoryQueue 進程內有界佇列
//
// Close 先關閉 done 喚醒阻塞的 Enqueue，等所有發送者退出後才關閉 ch。
type MemoryQueue struct {
	name string
	ch   chan Envelope
	done chan struct{}

	mu      sync.Mutex
	closed  bool
	senders sync.WaitGroup
}

var _ Queue = (*MemoryQueue)(nil)

// NewMemoryQueue 創建容量為 size 的佇列
func NewMemoryQueue(name string, size int) *MemoryQueue {
	if size < 1 {
		size = 1
	}
	return &MemoryQueue{name: name, ch: make(chan Envelope, size), done: make(chan struct{})}
}

// Name 佇列名稱
func (q *MemoryQueue) Name() string { return q.name }

// Len 待處理消息數
func (q *MemoryQueue) Len() int { return len(q.ch) }

// Enqueue 佇列滿時阻塞直到有空位、ctx 取消或佇列關閉
func (q *MemoryQueue) Enqueue(ctx context.Context, env Envelope) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case q.ch <- env:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return fmt.Errorf("enqueue %s job %s: %w", env.Kind, env.ID, ctx.Err())
	}
}

// Dequeue 關閉後仍會先取完剩餘消息
func (q *MemoryQueue) Dequeue(ctx context.Context) (Envelope, error) {
	select {
	case env, ok := <-q.ch:
		if !ok {
			return Envelope{}, ErrQueueClosed
		}
		return env, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

// Close 停止接收新消息，不等待消費者
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.senders.Wait()
	close(q.ch)
}
