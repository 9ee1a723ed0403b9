package hashpool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/soteria/accounts-system/internal/api/metrics"
)

const (
	defaultWorkers = 8
	queueCapacity  = 256
)

var ErrPoolClosed = errors.New("hash pool closed")

// Pool runs bcrypt on a fixed set of workers fed by a bounded queue, so
// hashing never executes on a serving goroutine and total concurrent bcrypt
// work is capped at the worker count. Callers block only on their own job's
// result.
type Pool struct {
	jobs chan job
	done chan struct{}
	cost int
	log  zerolog.Logger
}

type job struct {
	plaintext []byte
	result    chan result
}

type result struct {
	hash string
	err  error
}

// New creates a Pool with numWorkers workers and the given bcrypt cost.
// Defaults apply when numWorkers <= 0 or cost is outside bcrypt's range.
func New(numWorkers, cost int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	p := &Pool{
		jobs: make(chan job, queueCapacity),
		done: make(chan struct{}),
		cost: cost,
		log:  log,
	}
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(i)
	}
	return p
}

// Close stops the workers. In-flight hashes finish; callers still waiting on
// a queued job receive ErrPoolClosed.
func (p *Pool) Close() {
	close(p.done)
}

// Hash produces the bcrypt hash of plaintext. ctx governs only admission to
// the queue; once admitted the job runs to completion regardless of caller
// cancellation, so a worker never abandons a half-finished hash.
func (p *Pool) Hash(ctx context.Context, plaintext string) (string, error) {
	j := job{plaintext: []byte(plaintext), result: make(chan result, 1)}

	select {
	case p.jobs <- j:
		metrics.HashQueueDepth.Set(float64(len(p.jobs)))
	case <-ctx.Done():
		return "", fmt.Errorf("hash pool admission: %w", ctx.Err())
	case <-p.done:
		return "", ErrPoolClosed
	}

	select {
	case res := <-j.result:
		return res.hash, res.err
	case <-p.done:
		// The pool shut down; the result may still have been produced.
		select {
		case res := <-j.result:
			return res.hash, res.err
		default:
			return "", ErrPoolClosed
		}
	}
}

// Verify reports whether plaintext matches hash. Comparison is cheap relative
// to hashing and runs inline on the caller's goroutine.
func (p *Pool) Verify(hash, plaintext string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
}

func (p *Pool) runWorker(id int) {
	for {
		select {
		case <-p.done:
			return
		case j := <-p.jobs:
			metrics.HashQueueDepth.Set(float64(len(p.jobs)))

			start := time.Now()
			hash, err := bcrypt.GenerateFromPassword(j.plaintext, p.cost)
			metrics.HashDuration.Observe(time.Since(start).Seconds())

			if err != nil {
				p.log.Error().Err(err).Int("worker_id", id).Msg("password hashing failed")
			}
			j.result <- result{hash: string(hash), err: err}
		}
	}
}
