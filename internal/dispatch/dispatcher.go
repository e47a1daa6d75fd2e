package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is back-pressure from a saturated claim queue. Callers
	// should treat it like a store outage, not wait.
	ErrQueueFull = errors.New("claim queue is full")

	// ErrClaimTimeout means the bounded wait elapsed before a worker
	// reported back. The claim itself may still have committed server-side;
	// retrying is safe because a duplicate claim is rejected on its own.
	ErrClaimTimeout = errors.New("timed out waiting for claim result")

	ErrStopped = errors.New("dispatcher is stopped")
)

// ClaimJob identifies one claim to execute against the ledger.
type ClaimJob struct {
	Token  string
	UserID uint
	RoomID string
}

// ClaimFunc runs the locked claim transaction and returns the claimed amount.
type ClaimFunc func(ctx context.Context, job ClaimJob) (int64, error)

type claimResult struct {
	amount int64
	err    error
}

type claimRequest struct {
	job    ClaimJob
	result chan claimResult
}

// Dispatcher decouples the synchronous claim call from the locked claim
// transaction: callers enqueue onto a bounded queue consumed by a fixed pool
// of workers, and block on a per-job result channel up to a timeout.
type Dispatcher struct {
	execute ClaimFunc
	workers int

	jobs chan claimRequest
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func New(execute ClaimFunc, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}

	return &Dispatcher{
		execute: execute,
		workers: workers,
		jobs:    make(chan claimRequest, queueSize),
		quit:    make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}

	zap.L().Info("claim dispatcher started", zap.Int("workers", d.workers), zap.Int("queue_size", cap(d.jobs)))
}

// Stop halts the workers after their in-flight jobs finish. Queued jobs that
// no worker picked up are abandoned; their callers time out.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.quit)
		d.wg.Wait()
		zap.L().Info("claim dispatcher stopped")
	})
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for {
		select {
		case <-d.quit:
			return
		case req := <-d.jobs:
			// The job runs under its own context: a caller that gave up
			// waiting must not cancel a transaction already submitted.
			amount, err := d.execute(context.Background(), req.job)
			req.result <- claimResult{amount: amount, err: err}
		}
	}
}

// Submit enqueues job and waits up to timeout for its result. The result
// channel is buffered so a worker never blocks on a caller that timed out.
func (d *Dispatcher) Submit(ctx context.Context, job ClaimJob, timeout time.Duration) (int64, error) {
	select {
	case <-d.quit:
		return 0, ErrStopped
	default:
	}

	req := claimRequest{
		job:    job,
		result: make(chan claimResult, 1),
	}

	select {
	case d.jobs <- req:
	default:
		return 0, ErrQueueFull
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-req.result:
		return res.amount, res.err
	case <-timer.C:
		return 0, ErrClaimTimeout
	case <-ctx.Done():
		return 0, ErrClaimTimeout
	}
}
