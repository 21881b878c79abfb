// Package state persists evaluation run history to a local SQLite database.
package state

import "time"

// Run records one completed grid evaluation.
type Run struct {
	ID           string
	File         string
	Rows         int
	Cols         int
	FormulaCells int
	ErrorCells   int
	DurationMS   int64
	CreatedAt    time.Time
}

// Store is the persistence interface for run history.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error
	RecordRun(run *Run) error
	ListRuns(limit int) ([]*Run, error)
}
