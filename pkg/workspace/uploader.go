package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/ragdesk/pkg/logger"
)

var (
	defaultUploadWorkers   uint = 3
	defaultUploadQueueSize uint = 64
)

// DocumentUploader uploads a single document. *Service implements it.
type DocumentUploader interface {
	UploadDocument(ctx context.Context, name string, data []byte) (*Document, error)
}

// UploadJob is one file for the Uploader.
type UploadJob struct {
	Name string
	Data []byte
}

// UploadResult is the outcome of one UploadJob.
type UploadResult struct {
	Name     string
	Document *Document
	Err      error
}

// UploaderConfig is the configuration for an Uploader.
type UploaderConfig struct {
	// Documents performs each upload.
	Documents DocumentUploader

	// NumWorkers is the number of concurrent uploads (defaults to 3).
	NumWorkers uint

	// QueueSize is the capacity of the job queue (defaults to 64).
	QueueSize uint

	Logger *slog.Logger
}

type queuedUpload struct {
	index int
	job   UploadJob
}

// Uploader uploads documents with a fixed number of workers. Every worker
// shares the same client, so concurrent uploads may see simultaneous 401s.
type Uploader struct {
	config *UploaderConfig
	ctx    context.Context
	queue  chan queuedUpload
	wg     sync.WaitGroup
	logger *slog.Logger

	mu      sync.Mutex
	next    int
	results []UploadResult
	closed  bool
}

// NewUploader creates an Uploader and starts its workers. Uploads run under
// ctx; cancelling it fails the jobs that have not finished.
func NewUploader(ctx context.Context, c *UploaderConfig) (*Uploader, error) {
	if c.Documents == nil {
		return nil, errors.New("uploader needs a document uploader")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultUploadWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultUploadQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	u := &Uploader{
		config: c,
		ctx:    ctx,
		queue:  make(chan queuedUpload, c.QueueSize),
		logger: c.Logger,
	}

	u.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go u.worker(i)
	}

	return u, nil
}

// Enqueue submits a file for upload. It returns false, dropping the job,
// when the queue is full or the Uploader is closed.
func (u *Uploader) Enqueue(job UploadJob) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return false
	}

	select {
	case u.queue <- queuedUpload{index: u.next, job: job}:
		u.next++
		u.results = append(u.results, UploadResult{Name: job.Name})
		u.logger.Debug("upload queued", "filename", job.Name)
		return true
	default:
		u.logger.Warn("upload not queued, queue full", "filename", job.Name)
		return false
	}
}

// Close stops accepting jobs, waits for queued uploads to finish and returns
// one result per enqueued job, in enqueue order.
func (u *Uploader) Close() []UploadResult {
	u.mu.Lock()
	if !u.closed {
		u.closed = true
		close(u.queue)
	}
	u.mu.Unlock()

	u.wg.Wait()

	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]UploadResult(nil), u.results...)
}

// worker pulls uploads off the queue until it is closed.
func (u *Uploader) worker(id uint) {
	defer u.wg.Done()
	u.logger.Debug("upload worker started", "worker_id", id)

	for q := range u.queue {
		u.process(q)
	}

	u.logger.Debug("upload worker stopped", "worker_id", id)
}

func (u *Uploader) process(q queuedUpload) {
	result := UploadResult{Name: q.job.Name}

	if err := u.ctx.Err(); err != nil {
		result.Err = err
	} else {
		result.Document, result.Err = u.config.Documents.UploadDocument(u.ctx, q.job.Name, q.job.Data)
	}

	if result.Err != nil {
		u.logger.Warn("upload failed", "filename", q.job.Name, "error", result.Err)
	} else {
		u.logger.Debug("upload finished", "filename", q.job.Name, "document_id", result.Document.ID)
	}

	u.mu.Lock()
	u.results[q.index] = result
	u.mu.Unlock()
}
