package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ScreenPull/internal/domain/models"
)

const (
	jobKeyPrefix = "screenpull:job:"
	jobIndexKey  = "screenpull:jobs:by_created"
)

// RedisJobStore persists job records as JSON values in Redis, with a sorted
// set over creation time for history listings. Update serializes writers per
// job id, so mutators see a consistent read-modify-write cycle.
type RedisJobStore struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRedisJobStore creates a Redis-backed job store. A positive ttl expires
// terminal jobs after they finish.
func NewRedisJobStore(client *redis.Client, ttl time.Duration) *RedisJobStore {
	return &RedisJobStore{
		client: client,
		ttl:    ttl,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *RedisJobStore) Create(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	ok, err := s.client.SetNX(ctx, jobKeyPrefix+job.ID, data, 0).Result()
	if err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	if !ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}

	return s.client.ZAdd(ctx, jobIndexKey, redis.Z{
		Score:  float64(job.CreatedAt.UnixNano()),
		Member: job.ID,
	}).Err()
}

func (s *RedisJobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	data, err := s.client.Get(ctx, jobKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrJobNotFound
		}
		return nil, fmt.Errorf("load job: %w", err)
	}

	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

func (s *RedisJobStore) Update(ctx context.Context, id string, mutate func(*models.Job) error) (*models.Job, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(job); err != nil {
		return nil, err
	}

	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}

	var expire time.Duration
	if s.ttl > 0 && job.Status.Terminal() {
		expire = s.ttl
	}
	if err := s.client.Set(ctx, jobKeyPrefix+id, data, expire).Err(); err != nil {
		return nil, fmt.Errorf("store job: %w", err)
	}
	if job.Status.Terminal() {
		// Terminal jobs receive no further mutations; drop the per-id lock
		// so the map does not grow with finished jobs.
		s.releaseLock(id)
	}
	return job.Clone(), nil
}

func (s *RedisJobStore) List(ctx context.Context, limit, offset int) ([]models.JobSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	// Newest first.
	ids, err := s.client.ZRevRange(ctx, jobIndexKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	summaries := make([]models.JobSummary, 0, len(ids))
	for _, id := range ids {
		job, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrJobNotFound) {
				// Expired record, drop the index entry.
				_ = s.client.ZRem(ctx, jobIndexKey, id).Err()
				continue
			}
			return nil, err
		}
		summaries = append(summaries, job.Summary())
	}
	return summaries, nil
}

func (s *RedisJobStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func (s *RedisJobStore) releaseLock(id string) {
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
}
