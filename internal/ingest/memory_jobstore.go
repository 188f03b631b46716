package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
)

// MemoryJobStore keeps job records in process, for local runs and tests.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]JobRecord
}

var _ JobRecorder = (*MemoryJobStore)(nil)
var _ JobUpdater = (*MemoryJobStore)(nil)

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]JobRecord)}
}

func (s *MemoryJobStore) PutPending(_ context.Context, job *JobRecord) error {
	if job == nil {
		return errors.New("ingest: job cannot be nil")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	job.Status = JobStatusPending
	job.CreatedAt = now
	job.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.JobID]; exists {
		return errors.New("ingest: job already exists")
	}
	s.jobs[job.JobID] = *job
	return nil
}

func (s *MemoryJobStore) MarkCompleted(_ context.Context, jobID string, ledger *orchestrator.Ledger) error {
	return s.update(jobID, func(job *JobRecord) {
		job.Status = JobStatusCompleted
		job.Ledger = ledger
		job.ErrorMessage = ""
	})
}

func (s *MemoryJobStore) MarkFailed(_ context.Context, jobID string, errMsg string) error {
	return s.update(jobID, func(job *JobRecord) {
		job.Status = JobStatusFailed
		job.Ledger = nil
		job.ErrorMessage = errMsg
	})
}

func (s *MemoryJobStore) GetJob(_ context.Context, jobID string) (*JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return &job, nil
}

func (s *MemoryJobStore) update(jobID string, fn func(*JobRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	fn(&job)
	job.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	s.jobs[jobID] = job
	return nil
}
