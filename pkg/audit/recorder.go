package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RecorderConfig contains configuration for the audit recorder.
type RecorderConfig struct {
	// Enabled enables audit recording.
	Enabled bool

	// Buffer is the size of the async write channel buffer.
	// Default: 1000
	Buffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		Buffer:       1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder records audit trails for gateway requests. Records are written
// asynchronously so request handling never blocks on storage. When the
// buffer is full the record is dropped rather than stalling the request.
type Recorder struct {
	storage    Storage
	config     *RecorderConfig
	recordChan chan *Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
	dropped    int64
	mu         sync.Mutex
}

// NewRecorder creates a new audit recorder with the provided storage
// backend and configuration.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.Buffer <= 0 {
		config.Buffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *Record, config.Buffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"buffer", config.Buffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues an audit record for async writing. Assigns the record
// an ID when it has none. Returns immediately; a full buffer drops the
// record.
func (r *Recorder) Record(record *Record) {
	if !r.config.Enabled {
		return
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Time.IsZero() {
		record.Time = time.Now().UTC()
	}

	select {
	case r.recordChan <- record:
	default:
		r.mu.Lock()
		r.dropped++
		dropped := r.dropped
		r.mu.Unlock()

		r.logger.Warn("audit buffer full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"dropped_total", dropped,
		)
	}
}

// Dropped returns the number of records dropped due to a full buffer.
func (r *Recorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close gracefully shuts down the recorder by draining the async channel
// and waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down audit recorder")
		close(r.done)
		r.wg.Wait()
		r.logger.Info("audit recorder shut down complete")
	})
	return nil
}

// worker is the background goroutine that drains the record channel and
// writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records before exit
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single audit record to storage.
func (r *Recorder) writeRecord(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}

	r.logger.Debug("audit record written",
		"record_id", record.ID,
		"request_id", record.RequestID,
		"route", record.Route,
		"status", record.Status,
	)
}
