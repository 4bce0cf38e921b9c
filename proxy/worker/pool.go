// Package worker provides an asynchronous worker pool for recording chat
// transcripts using the provided storage.Driver and announcing them on the
// provided eventstream.Publisher.
//
// The pool decouples persistence from the proxy's HTTP hot path so that a
// slow or failing store never changes what the website receives.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lokallens/lokallens/pkg/eventstream"
	"github.com/lokallens/lokallens/pkg/llm"
	"github.com/lokallens/lokallens/pkg/storage"
	"github.com/lokallens/lokallens/pkg/utils"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 30 * time.Second
)

// Job is one completed chat exchange to record.
type Job struct {
	RequestID   string
	Provider    string
	Model       string
	Turns       []llm.ConversationTurn
	Reply       string
	StartedAt   time.Time
	CompletedAt time.Time
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting transcripts.
	Driver storage.Driver

	// Publisher is the optional event stream for recorded transcripts.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Pool processes transcript jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"request_id", job.RequestID,
			"provider", job.Provider,
			"model", job.Model,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"request_id", job.RequestID,
			"provider", job.Provider,
			"model", job.Model,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the proxy HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("transcript worker stopped", "worker_id", id)
}

// processJob stores the transcript and then publishes its event. A failed
// store skips the publish.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultJobTimeout)
	defer cancel()

	transcript := newTranscript(job)

	if err := p.config.Driver.Put(ctx, transcript); err != nil {
		p.logger.Error("transcript storage failed",
			"request_id", job.RequestID,
			"provider", job.Provider,
			"error", err,
		)
		return
	}

	p.logger.Info("transcript stored",
		"id", transcript.ID,
		"request_id", job.RequestID,
		"turns", len(transcript.Turns),
		"reply_preview", utils.Truncate(transcript.Reply, 60),
	)

	if p.config.Publisher == nil {
		return
	}

	event := eventstream.NewTranscriptRecordedEvent(transcript, time.Now())
	if err := p.config.Publisher.PublishTranscript(ctx, event); err != nil {
		p.logger.Warn("transcript event publish failed",
			"id", transcript.ID,
			"event_id", event.EventID,
			"error", err,
		)
		return
	}

	p.logger.Debug("transcript event published",
		"id", transcript.ID,
		"event_id", event.EventID,
	)
}

func newTranscript(job Job) *storage.Transcript {
	turns := make([]llm.ConversationTurn, len(job.Turns))
	copy(turns, job.Turns)

	return &storage.Transcript{
		ID:          uuid.NewString(),
		RequestID:   job.RequestID,
		Provider:    job.Provider,
		Model:       job.Model,
		Turns:       turns,
		Reply:       job.Reply,
		StartedAt:   job.StartedAt.UTC(),
		CompletedAt: job.CompletedAt.UTC(),
	}
}
