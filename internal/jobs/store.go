package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/loreforge/loreforge/internal/domain"
)

// JobStore persists job records. The orchestrator's state machine runs on
// top of this interface so the file-backed store can be swapped for a row
// or key-value store without touching the orchestrator.
type JobStore interface {
	Create(ctx context.Context, job *domain.JobRecord) error
	Update(ctx context.Context, job *domain.JobRecord) error
	Get(ctx context.Context, id string) (*domain.JobRecord, error)
}

// FileJobStore keeps one JSON file per job id under a directory. Durable
// and pollable with no extra infrastructure. Records are never deleted by
// the store; garbage collection is a caller concern.
type FileJobStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileJobStore(dir string) (*FileJobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create job directory: %w", err)
	}
	return &FileJobStore{dir: dir}, nil
}

func (s *FileJobStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileJobStore) Create(ctx context.Context, job *domain.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(job)
}

// Update persists a new snapshot of the record, enforcing the forward-only
// status machine. Same-status writes are progress updates and always
// allowed (last write wins).
func (s *FileJobStore) Update(ctx context.Context, job *domain.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(job.ID)
	if err != nil {
		return err
	}
	if existing.Status != job.Status && !domain.CanTransition(existing.Status, job.Status) {
		return fmt.Errorf("job %s: %s -> %s: %w", job.ID, existing.Status, job.Status, domain.ErrJobTransition)
	}
	return s.write(job)
}

func (s *FileJobStore) Get(ctx context.Context, id string) (*domain.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

func (s *FileJobStore) read(id string) (*domain.JobRecord, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to read job %s: %w", id, err)
	}

	var job domain.JobRecord
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", id, err)
	}
	return &job, nil
}

// write replaces the record file atomically via a temp file and rename.
func (s *FileJobStore) write(job *domain.JobRecord) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}

	tmp := s.path(job.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write job %s: %w", job.ID, err)
	}
	if err := os.Rename(tmp, s.path(job.ID)); err != nil {
		return fmt.Errorf("failed to persist job %s: %w", job.ID, err)
	}
	return nil
}
