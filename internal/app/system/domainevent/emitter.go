// internal/app/system/domainevent/emitter.go
package domainevent

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/domain/events"
)

// Handler consumes one domain event. The projector is the only handler in
// this service; handler errors are logged, never retried automatically, and
// never surfaced to the request that produced the event.
type Handler interface {
	HandleEvent(ctx context.Context, e events.Event) error
}

// Emitter delivers domain events to its handler on a pool of workers, one
// queue per worker. An event is routed to a worker by hashing its shard
// key, so events sharing a key are handled one at a time in publish order.
// Only events on different keys run concurrently.
//
// Publish is called only after the originating transaction has committed,
// so a handler never sees a fact that did not durably happen. Publish never
// blocks the caller: when the target queue is full the event is dropped
// with a log line, accepted as projection drift until a later write or a
// rebuild heals the index.
type Emitter struct {
	handler Handler
	log     *zap.Logger
	queues  []chan events.Event

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates an Emitter with the given worker count and total backlog
// capacity, split evenly across the per-worker queues.
func New(handler Handler, logger *zap.Logger, workers, queueSize int) *Emitter {
	if workers < 1 {
		workers = 1
	}
	perQueue := queueSize / workers
	if perQueue < 1 {
		perQueue = 1
	}
	queues := make([]chan events.Event, workers)
	for i := range queues {
		queues[i] = make(chan events.Event, perQueue)
	}
	return &Emitter{
		handler: handler,
		log:     logger,
		queues:  queues,
	}
}

// Start launches one worker per queue.
func (e *Emitter) Start() {
	for _, q := range e.queues {
		e.wg.Add(1)
		go e.run(q)
	}
	e.log.Info("domain event workers started",
		zap.Int("workers", len(e.queues)),
		zap.Int("queue_size", len(e.queues)*cap(e.queues[0])))
}

// Stop closes the intakes and waits for in-flight events to finish.
// Publish must not be called after Stop.
func (e *Emitter) Stop() {
	e.stopOnce.Do(func() {
		for _, q := range e.queues {
			close(q)
		}
	})
	e.wg.Wait()
	e.log.Info("domain event workers stopped")
}

// Publish enqueues events for asynchronous handling. Call it only after the
// transaction that produced them has committed.
func (e *Emitter) Publish(evts ...events.Event) {
	for _, evt := range evts {
		q := e.queues[shard(evt.ShardKey(), len(e.queues))]
		select {
		case q <- evt:
		default:
			e.log.Warn("event queue full, dropping event",
				zap.String("event", evt.Name()),
				zap.String("shard_key", evt.ShardKey()))
		}
	}
}

func shard(key string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

func (e *Emitter) run(q chan events.Event) {
	defer e.wg.Done()
	for evt := range q {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := e.handler.HandleEvent(ctx, evt); err != nil {
			e.log.Error("event handling failed",
				zap.String("event", evt.Name()),
				zap.Error(err))
		}
		cancel()
	}
}
