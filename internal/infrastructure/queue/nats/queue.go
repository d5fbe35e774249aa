package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
	"github.com/mkrivosheev/esg-auditor/internal/infrastructure/resilience"
)

// Queue moves pipeline tasks between stages over core NATS. Each stage reads
// from a named subject through a shared queue group, so any number of workers
// can compete for tasks without duplicate delivery.
type Queue struct {
	conn     *nats.Conn
	group    string
	executor *resilience.Executor

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	QueueGroup           string
	ResilienceExecutor   *resilience.Executor
}

func New(url string) (*Queue, error) {
	return NewWithOptions(url, Options{})
}

func NewWithOptions(url string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	group := options.QueueGroup
	if group == "" {
		group = "workers"
	}

	conn, err := nats.Connect(
		url,
		nats.Name("esg-auditor"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		group:    group,
		executor: options.ResilienceExecutor,
		subs:     make(map[string]*nats.Subscription),
	}, nil
}

func (q *Queue) Close() {
	q.mu.Lock()
	for _, sub := range q.subs {
		_ = sub.Unsubscribe()
	}
	q.subs = make(map[string]*nats.Subscription)
	q.mu.Unlock()

	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) Enqueue(ctx context.Context, queue string, task domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	call := func(_ context.Context) error {
		if err := q.conn.Publish(queue, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// Dequeue blocks for up to wait on the named subject and returns (nil, nil)
// when no task arrives in time, so callers can loop on a shutdown signal.
func (q *Queue) Dequeue(ctx context.Context, queue string, wait time.Duration) (*domain.Task, error) {
	sub, err := q.subscription(queue)
	if err != nil {
		return nil, err
	}

	msg, err := sub.NextMsg(wait)
	if err != nil {
		if errors.Is(err, nats.ErrTimeout) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, wrapTemporaryIfNeeded(fmt.Errorf("nats next message: %w", err))
	}

	var task domain.Task
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidTask, "decode task", err)
	}
	return &task, nil
}

func (q *Queue) subscription(queue string) (*nats.Subscription, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if sub, ok := q.subs[queue]; ok {
		return sub, nil
	}
	sub, err := q.conn.QueueSubscribeSync(queue, q.group)
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %s: %w", queue, err)
	}
	if err := q.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("nats flush: %w", err)
	}
	q.subs[queue] = sub
	return sub, nil
}
