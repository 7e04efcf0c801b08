// Package persistence provides the storage abstraction for editing sessions.
package persistence

import (
	"context"
	"time"

	"github.com/tidygrid/tidygrid/pkg/models"
)

// Persistence is the storage entry point shared by all backends.
type Persistence interface {
	DataSetRepository() DataSetRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// DataSetRepository stores whole session snapshots. A dataset is one
// aggregate (three tables plus rules) saved and loaded as a unit; edits
// always go through Save with the full snapshot.
type DataSetRepository interface {
	Save(ctx context.Context, dataset *models.DataSet) error
	GetByID(ctx context.Context, id string) (*models.DataSet, error)
	List(ctx context.Context) ([]*models.DataSet, error)
	Delete(ctx context.Context, id string) error

	// DeleteOlderThan removes sessions not touched since the cutoff and
	// reports how many were swept.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
