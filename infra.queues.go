package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReconcileQueue is the default queue of availability repair tasks.
const ReconcileQueue = "reconcile"

// Ensure *redisQueue implements Queuer.
var _ Queuer = (*redisQueue)(nil)

// ReconcileTask asks the worker to recompute the availability of a book.
// An empty BookID means every book.
type ReconcileTask struct {
	BookID   string    `json:"bookId"`
	LoanID   string    `json:"loanId,omitempty"`
	Reason   string    `json:"reason"`
	QueuedAt time.Time `json:"queuedAt"`
}

// Queuer describes a queue.
type Queuer interface {
	Push(ctx context.Context, qid string, task ReconcileTask) error
	Pop(ctx context.Context, qids ...string) (string, ReconcileTask, error)
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisQueue provides a list based queue. Pop blocks at most for timeout
// and reports redis.Nil when nothing arrived.
func NewRedisQueue(client *redis.Client, timeout time.Duration) Queuer {
	return &redisQueue{client: client, timeout: timeout}
}

// Push enqueues a task onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, task ReconcileTask) error {
	data, err := codec.Marshal(task)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, data).Err()
}

// Pop returns the first dequeued task from the list of queue ids.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, ReconcileTask, error) {
	var task ReconcileTask
	infos, err := q.client.BLPop(ctx, q.timeout, qids...).Result()
	if err != nil {
		return "", task, err
	}
	if err = codec.Unmarshal([]byte(infos[1]), &task); err != nil {
		return infos[0], task, err
	}
	return infos[0], task, nil
}
