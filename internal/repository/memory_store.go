package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ScreenPull/internal/domain/models"
)

// MemoryJobStore keeps job records in process memory. Snapshots returned by
// Get/List are deep copies; callers never observe in-flight mutation.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
	ttl  time.Duration
	stop chan struct{}
	once sync.Once
}

// NewMemoryJobStore creates an in-memory store. A positive ttl evicts
// terminal jobs that finished longer than ttl ago.
func NewMemoryJobStore(ttl time.Duration) *MemoryJobStore {
	s := &MemoryJobStore{
		jobs: make(map[string]*models.Job),
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	if ttl > 0 {
		go s.evictLoop()
	}
	return s
}

func (s *MemoryJobStore) Create(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *MemoryJobStore) Get(_ context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, models.ErrJobNotFound
	}
	return job.Clone(), nil
}

func (s *MemoryJobStore) Update(_ context.Context, id string, mutate func(*models.Job) error) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, models.ErrJobNotFound
	}
	if err := mutate(job); err != nil {
		return nil, err
	}
	return job.Clone(), nil
}

func (s *MemoryJobStore) List(_ context.Context, limit, offset int) ([]models.JobSummary, error) {
	s.mu.RLock()
	summaries := make([]models.JobSummary, 0, len(s.jobs))
	for _, job := range s.jobs {
		summaries = append(summaries, job.Summary())
	}
	s.mu.RUnlock()

	sort.Slice(summaries, func(i, k int) bool {
		return summaries[i].CreatedAt.After(summaries[k].CreatedAt)
	})

	if offset >= len(summaries) {
		return []models.JobSummary{}, nil
	}
	summaries = summaries[offset:]
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Close stops the eviction loop.
func (s *MemoryJobStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryJobStore) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

// evictExpired drops terminal jobs past their retention. Live jobs are
// never evicted.
func (s *MemoryJobStore) evictExpired() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, job := range s.jobs {
		if job.Status.Terminal() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
