package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loreforge/loreforge/internal/domain"
	"github.com/loreforge/loreforge/internal/telemetry"
)

// queueSize bounds how many submitted jobs may wait for a worker.
const queueSize = 256

// Handler runs one job type. It receives the job record for its echo
// fields, may emit progress strings, and returns the result payload.
type Handler func(ctx context.Context, job *domain.JobRecord, progress func(string)) (map[string]any, error)

// Orchestrator accepts units of long-running work, keeps a durable record
// per job id, and runs handlers on a pool of workers. Callers get the id
// immediately and poll the record.
type Orchestrator struct {
	store    JobStore
	handlers map[string]Handler
	queue    chan string
	workers  int

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewOrchestrator(store JobStore, workers int) *Orchestrator {
	if workers <= 0 {
		workers = 2
	}
	return &Orchestrator{
		store:    store,
		handlers: make(map[string]Handler),
		queue:    make(chan string, queueSize),
		workers:  workers,
	}
}

// Register binds a handler to a job type. Not safe to call after Start.
func (o *Orchestrator) Register(jobType string, h Handler) {
	o.handlers[jobType] = h
}

// Submit creates the durable record in queued state and hands the job to
// the worker pool. Returns the job id.
func (o *Orchestrator) Submit(ctx context.Context, job *domain.JobRecord) (string, error) {
	if _, ok := o.handlers[job.JobType]; !ok {
		return "", fmt.Errorf("no handler registered for job type %q", job.JobType)
	}

	job.ID = uuid.New().String()
	job.Status = domain.JobStatusQueued
	if err := o.store.Create(ctx, job); err != nil {
		return "", err
	}

	select {
	case o.queue <- job.ID:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return job.ID, nil
}

// Get returns the current record for a job id.
func (o *Orchestrator) Get(ctx context.Context, id string) (*domain.JobRecord, error) {
	return o.store.Get(ctx, id)
}

// Start launches the worker pool. Workers run until Stop is called or the
// context is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	log.Printf("jobs: starting %d workers", o.workers)
	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id, ok := <-o.queue:
					if !ok {
						return
					}
					if err := o.process(ctx, id); err != nil {
						log.Printf("jobs: job %s failed: %v", id, err)
					}
				}
			}
		}()
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() { close(o.queue) })
	o.wg.Wait()
	log.Println("jobs: workers stopped")
}

// process runs one job to completion: queued -> processing, then done or
// error. The error return re-surfaces handler faults to the worker loop
// after the record is updated.
func (o *Orchestrator) process(ctx context.Context, id string) error {
	job, err := o.store.Get(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	job.Status = domain.JobStatusProcessing
	job.StartTime = &now
	if err := o.store.Update(ctx, job); err != nil {
		return err
	}

	progress := func(p string) {
		job.Progress = p
		if err := o.store.Update(ctx, job); err != nil {
			log.Printf("jobs: job %s progress write failed: %v", id, err)
		}
	}

	handler := o.handlers[job.JobType]
	result, handlerErr := handler(ctx, job, progress)

	end := time.Now().UTC()
	job.EndTime = &end
	if handlerErr != nil {
		job.Status = domain.JobStatusError
		job.Error = handlerErr.Error()
		telemetry.CaptureError(ctx, handlerErr)
		if err := o.store.Update(ctx, job); err != nil {
			return err
		}
		return handlerErr
	}

	job.Status = domain.JobStatusDone
	job.Result = result
	return o.store.Update(ctx, job)
}
