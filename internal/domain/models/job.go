package models

import (
	"errors"
	"time"
)

// JobStatus is the lifecycle state of a screening job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

var (
	// ErrJobNotFound is returned for an unknown job id.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobTerminal is returned when an operation requires a live job.
	ErrJobTerminal = errors.New("job already terminal")

	// ErrJobNotCompleted is returned when results are requested before completion.
	ErrJobNotCompleted = errors.New("job not completed")
)

// Job is the mutable record of one screening run. All writes go through the
// orchestrator; stores hand out snapshots only.
type Job struct {
	ID             string        `json:"job_id"`
	Status         JobStatus     `json:"status"`
	Progress       int           `json:"progress"`
	TotalStocks    int           `json:"total_stocks"`
	ScreenedStocks int           `json:"screened_stocks"`
	FoundStocks    int           `json:"found_stocks"`
	Results        []StockResult `json:"results,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	StartedAt      *time.Time    `json:"started_at,omitempty"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	ExecutionTime  float64       `json:"execution_time,omitempty"` // seconds
}

// NewJob creates a pending job.
func NewJob(id string) *Job {
	return &Job{
		ID:        id,
		Status:    JobPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Clone returns a deep copy safe to hand to callers.
func (j *Job) Clone() *Job {
	cp := *j
	if j.Results != nil {
		cp.Results = make([]StockResult, len(j.Results))
		copy(cp.Results, j.Results)
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// Summary strips the result payload for history listings.
func (j *Job) Summary() JobSummary {
	return JobSummary{
		ID:             j.ID,
		Status:         j.Status,
		Progress:       j.Progress,
		TotalStocks:    j.TotalStocks,
		ScreenedStocks: j.ScreenedStocks,
		FoundStocks:    j.FoundStocks,
		CreatedAt:      j.CreatedAt,
		CompletedAt:    j.CompletedAt,
		ErrorMessage:   j.ErrorMessage,
	}
}

// JobSummary is the history row exposed by list endpoints.
type JobSummary struct {
	ID             string     `json:"job_id"`
	Status         JobStatus  `json:"status"`
	Progress       int        `json:"progress"`
	TotalStocks    int        `json:"total_stocks"`
	ScreenedStocks int        `json:"screened_stocks"`
	FoundStocks    int        `json:"found_stocks"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
}

// JobEvent is published on job lifecycle and progress changes.
type JobEvent struct {
	JobID          string    `json:"job_id"`
	Status         JobStatus `json:"status"`
	Progress       int       `json:"progress"`
	TotalStocks    int       `json:"total_stocks"`
	ScreenedStocks int       `json:"screened_stocks"`
	FoundStocks    int       `json:"found_stocks"`
	Timestamp      time.Time `json:"timestamp"`
}
