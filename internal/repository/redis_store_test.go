package repository

import "testing"

// The lock map exists only while a job is live; finishing a job must not
// leave its per-id mutex behind.
func TestRedisStoreLockLifecycle(t *testing.T) {
	s := NewRedisJobStore(nil, 0)

	a := s.lockFor("j1")
	if s.lockFor("j1") != a {
		t.Fatalf("same id must reuse the same lock")
	}
	if s.lockFor("j2") == a {
		t.Fatalf("distinct ids must not share a lock")
	}
	if len(s.locks) != 2 {
		t.Fatalf("locks held: got %d want 2", len(s.locks))
	}

	s.releaseLock("j1")
	if len(s.locks) != 1 {
		t.Fatalf("release must drop the entry: got %d want 1", len(s.locks))
	}
	if s.lockFor("j1") == a {
		t.Fatalf("released id must get a fresh lock")
	}
}
