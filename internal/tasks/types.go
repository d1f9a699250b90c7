package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TaskFunc is the unit of work. The logger is tagged with the task name.
type TaskFunc func(ctx context.Context, logger zerolog.Logger) error

type TaskStatus struct {
	Name       string    `json:"name,omitempty"`
	Running    bool      `json:"running,omitempty"`
	LastRun    time.Time `json:"last_run"`
	LastResult string    `json:"last_result,omitempty"`
	NextRun    time.Time `json:"next_run"`
}
