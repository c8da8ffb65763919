package app

import "time"

// Operation tracks the CLI command run in one session. It is logged when
// the app closes.
type Operation struct {
	SessionID  string
	Name       string
	Parameters string
	Status     string // "success" or "error"
	StartedAt  time.Time
}

// NewOperation creates an operation that has not failed yet.
func NewOperation(sessionID, name, parameters string, startedAt time.Time) *Operation {
	return &Operation{
		SessionID:  sessionID,
		Name:       name,
		Parameters: parameters,
		Status:     "success",
		StartedAt:  startedAt,
	}
}

// Record marks the operation failed when err is non-nil and returns err.
func (op *Operation) Record(err error) error {
	if err != nil {
		op.Status = "error"
	}
	return err
}

// Failed returns true if any recorded step failed.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
