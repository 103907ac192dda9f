package telegram

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	jobTracer          = otel.Tracer("spendlog/bot")
	jobMeter           = otel.Meter("spendlog/bot")
	jobDuration, _     = jobMeter.Float64Histogram("bot.message.duration", metric.WithDescription("Message handling duration in seconds"), metric.WithUnit("s"))
	jobTotal, _        = jobMeter.Int64Counter("bot.message.total", metric.WithDescription("Handled messages by status"))
	jobQueueDropped, _ = jobMeter.Int64Counter("bot.message.queue_dropped", metric.WithDescription("Messages dropped due to full queue"))
)

// job is one unit of bot work, typically answering a single chat message.
type job interface {
	Execute(ctx context.Context) error
	Description() string
}

// workerPool answers messages on a fixed number of goroutines so a slow store
// never stalls update polling.
type workerPool struct {
	workerCount int
	jobs        chan job
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	timeout     time.Duration
}

func newWorkerPool(workerCount, queueSize int, jobTimeout time.Duration) *workerPool {
	ctx, cancel := context.WithCancel(context.Background())
	if workerCount < 1 {
		workerCount = 1
	}

	return &workerPool{
		workerCount: workerCount,
		jobs:        make(chan job, queueSize),
		ctx:         ctx,
		cancel:      cancel,
		timeout:     jobTimeout,
	}
}

func (wp *workerPool) Start() {
	log.Printf("Starting bot worker pool with %d workers", wp.workerCount)

	for i := 1; i <= wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *workerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case j, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processJob(id, j)
		}
	}
}

func (wp *workerPool) processJob(workerID int, j job) {
	ctx, cancel := context.WithTimeout(wp.ctx, wp.timeout)
	defer cancel()

	ctx, span := jobTracer.Start(ctx, "bot.message",
		trace.WithAttributes(
			attribute.Int("worker.id", workerID),
			attribute.String("job.description", j.Description()),
		),
	)
	defer span.End()

	start := time.Now()

	if err := j.Execute(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		jobDuration.Record(ctx, time.Since(start).Seconds())
		log.Printf("Bot worker %d: error handling %s: %v", workerID, j.Description(), err)
		return
	}

	jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "success")))
	jobDuration.Record(ctx, time.Since(start).Seconds())
}

// Submit queues j without blocking. A full queue drops the job.
func (wp *workerPool) Submit(j job) error {
	select {
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	case wp.jobs <- j:
		return nil
	default:
		jobQueueDropped.Add(context.Background(), 1)
		return fmt.Errorf("bot queue full, dropping %s", j.Description())
	}
}

// ShutdownWithTimeout stops accepting jobs and waits for queued ones to
// finish. Workers still busy after timeout have their context cancelled.
func (wp *workerPool) ShutdownWithTimeout(timeout time.Duration) {
	close(wp.jobs)

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Bot worker pool: all workers finished")
	case <-time.After(timeout):
		log.Println("Bot worker pool: timeout reached, forcing shutdown")
	}
	wp.cancel()
}
