package store

import (
	"context"

	"github.com/me/rota/pkg/model"
)

// Store defines the persistence layer for Rota entities.
type Store interface {
	// Job CRUD
	CreateJob(ctx context.Context, job *model.Job) error
	GetJob(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context, opts model.ListOptions) ([]*model.Job, int, error)
	UpdateJob(ctx context.Context, job *model.Job) error

	// Result storage. A job's result is always replaced wholesale,
	// never merged with a previous one.
	ReplaceResult(ctx context.Context, jobID string, records []model.ClassifiedRecord, unassigned []model.UnassignedSession) error
	GetResult(ctx context.Context, jobID string) ([]model.ClassifiedRecord, []model.UnassignedSession, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
