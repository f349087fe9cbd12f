package model

// TerminalStatusThreshold separates in-progress judge states (queued,
// compiling, running) from finished ones. A verdict is terminal when its
// status code exceeds this value.
const TerminalStatusThreshold = 7

// Submission is ephemeral: it exists for the duration of one submit request
// and is never persisted. Only the latest observed status is retained while
// polling.
type Submission struct {
	RemoteSubmissionID string `json:"remote_submission_id"`
	ProblemID          string `json:"problem_id"`
	CompilerID         int    `json:"compiler_id"`
	SourceCode         string `json:"-"`
	StatusCode         int    `json:"status_code"`
	StatusName         string `json:"status_name"`
}

// Terminal reports whether the last observed status is a finished verdict.
func (s *Submission) Terminal() bool {
	return s.StatusCode > TerminalStatusThreshold
}

// Verdict is the result payload returned to the submitter and carried on
// notification events.
type Verdict struct {
	StatusCode int    `json:"status_code"`
	StatusName string `json:"status_name"`
}
