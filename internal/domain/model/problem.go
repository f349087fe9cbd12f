package model

import (
	"time"
)

// Problem mirrors a problem on the remote judge. RemoteProblemID and
// RemoteProblemCode are assigned by the judge at creation time and are never
// chosen locally; until they are set the problem is unsynchronized and must
// not accept test-case or submission operations.
type Problem struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Description       string     `json:"description"`
	TimeLimitSeconds  int        `json:"time_limit_seconds"`
	RemoteProblemID   string     `json:"remote_problem_id,omitempty"`
	RemoteProblemCode string     `json:"remote_problem_code,omitempty"`
	TestCases         []TestCase `json:"test_cases,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Synced reports whether the problem has a remote counterpart.
func (p *Problem) Synced() bool {
	return p.RemoteProblemID != ""
}

// TestCase is a judge test case. RemoteTestID is immutable once assigned.
// Removal soft-deletes the remote record (active=false) before the local row
// is hard-deleted; the two steps are never reordered.
type TestCase struct {
	ID           string    `json:"id"`
	ProblemID    string    `json:"problem_id"`
	Input        string    `json:"input"`
	Output       string    `json:"output"`
	RemoteTestID string    `json:"remote_test_id,omitempty"`
	Active       bool      `json:"active"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
