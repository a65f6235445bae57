package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	deadLetterCap = 1000
	promoteBatch  = 100
)

// promoteScript moves retries whose due time (score, unix ms) has passed onto the queue tail.
var promoteScript = redis.NewScript(`
local due = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", 0, ARGV[2])
for _, m in ipairs(due) do
  redis.call("ZREM", KEYS[1], m)
  redis.call("LPUSH", KEYS[2], m)
end
return #due
`)

// RedisQueue stores pending messages in a Redis list (LPUSH/BLMOVE, FIFO). A dequeued
// message sits in a processing list until it is acked, retried or dead-lettered, so a
// crashed worker loses nothing. Delayed retries wait in a sorted set keyed by due time.
type RedisQueue struct {
	client        redis.UniversalClient
	queueKey      string
	processingKey string
	retryKey      string
	deadLetterKey string
	now           func() time.Time
}

// NewRedisQueue builds a queue on the given keys. The processing list and retry set
// live next to queueKey.
func NewRedisQueue(client redis.UniversalClient, queueKey, deadLetterKey string) *RedisQueue {
	return &RedisQueue{
		client:        client,
		queueKey:      queueKey,
		processingKey: queueKey + ":processing",
		retryKey:      queueKey + ":retry",
		deadLetterKey: deadLetterKey,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue appends msg to the tail of the queue.
func (q *RedisQueue) Enqueue(ctx context.Context, msg Message) error {
	payload, err := q.encode(&msg)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.queueKey, payload).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// Dequeue promotes due retries, then moves the oldest message to the processing list.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Message, error) {
	keys := []string{q.retryKey, q.queueKey}
	if err := promoteScript.Run(ctx, q.client, keys, q.now().UnixMilli(), promoteBatch).Err(); err != nil {
		return nil, fmt.Errorf("promote retries: %w", err)
	}

	raw, err := q.client.BLMove(ctx, q.queueKey, q.processingKey, "RIGHT", "LEFT", timeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		// unreadable payloads would block the processing list forever
		_ = q.client.LRem(ctx, q.processingKey, 1, raw).Err()
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	msg.raw = raw
	return &msg, nil
}

// Ack drops a delivered message from the processing list.
func (q *RedisQueue) Ack(ctx context.Context, msg Message) error {
	if msg.raw == "" {
		return nil
	}
	return q.client.LRem(ctx, q.processingKey, 1, msg.raw).Err()
}

// Retry schedules msg for another attempt after delay. A zero delay puts it back at the
// head of the queue.
func (q *RedisQueue) Retry(ctx context.Context, msg Message, delay time.Duration) error {
	prev := msg.raw
	payload, err := q.encode(&msg)
	if err != nil {
		return err
	}
	pipe := q.client.TxPipeline()
	if delay <= 0 {
		pipe.RPush(ctx, q.queueKey, payload)
	} else {
		pipe.ZAdd(ctx, q.retryKey, redis.Z{Score: float64(q.now().Add(delay).UnixMilli()), Member: payload})
	}
	if prev != "" {
		pipe.LRem(ctx, q.processingKey, 1, prev)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("retry notification: %w", err)
	}
	return nil
}

// Recover puts messages left in the processing list by a dead worker back at the head
// of the queue, oldest first. It returns how many were moved.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, q.processingKey, q.queueKey, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("recover notifications: %w", err)
		}
		moved++
	}
}

func (q *RedisQueue) encode(msg *Message) (string, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = q.now()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal notification: %w", err)
	}
	return string(payload), nil
}

// DeadLetter records msg with its final error.
func (q *RedisQueue) DeadLetter(ctx context.Context, msg Message, cause error) error {
	entry := DeadLetter{Message: msg, FailedAt: q.now()}
	if cause != nil {
		entry.Error = cause.Error()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}
	pipe := q.client.TxPipeline()
	pipe.LPush(ctx, q.deadLetterKey, payload)
	pipe.LTrim(ctx, q.deadLetterKey, 0, deadLetterCap-1)
	if msg.raw != "" {
		pipe.LRem(ctx, q.processingKey, 1, msg.raw)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// ListDeadLetters returns up to limit entries, newest first.
func (q *RedisQueue) ListDeadLetters(ctx context.Context, limit int) ([]DeadLetter, error) {
	if limit <= 0 || limit > deadLetterCap {
		limit = deadLetterCap
	}
	raw, err := q.client.LRange(ctx, q.deadLetterKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	result := make([]DeadLetter, 0, len(raw))
	for _, item := range raw {
		var entry DeadLetter
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

// Len reports the number of messages waiting in the queue, excluding scheduled retries.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueKey).Result()
}

// Pending reports messages being processed and retries still waiting for their due time.
func (q *RedisQueue) Pending(ctx context.Context) (processing, scheduled int64, err error) {
	pipe := q.client.Pipeline()
	p := pipe.LLen(ctx, q.processingKey)
	r := pipe.ZCard(ctx, q.retryKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return p.Val(), r.Val(), nil
}
