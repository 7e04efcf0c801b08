package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/tidygrid/tidygrid/pkg/persistence"
)

// DataSetRepository stores one JSON file per session under <root>/datasets.
type DataSetRepository struct {
	root string
}

// NewDataSetRepository creates a new dataset repository.
func NewDataSetRepository(root string) *DataSetRepository {
	return &DataSetRepository{root: root}
}

func (dr *DataSetRepository) dir() string {
	return path.Join(dr.root, "datasets")
}

func (dr *DataSetRepository) filePath(id string) string {
	return path.Join(dr.dir(), id+".json")
}

// Save writes the full session snapshot.
func (dr *DataSetRepository) Save(_ context.Context, dataset *models.DataSet) error {
	if err := os.MkdirAll(dr.dir(), 0o755); err != nil {
		return persistence.NewDataSetError("Save", dataset.ID, err)
	}

	payload, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return persistence.NewDataSetError("Save", dataset.ID, err)
	}

	if err := os.WriteFile(dr.filePath(dataset.ID), payload, 0o644); err != nil {
		return persistence.NewDataSetError("Save", dataset.ID, err)
	}

	return nil
}

// GetByID loads one session snapshot.
func (dr *DataSetRepository) GetByID(_ context.Context, id string) (*models.DataSet, error) {
	payload, err := os.ReadFile(dr.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewDataSetError("GetByID", id, persistence.ErrDataSetNotFound)
		}

		return nil, persistence.NewDataSetError("GetByID", id, err)
	}

	var dataset models.DataSet
	if err := json.Unmarshal(payload, &dataset); err != nil {
		return nil, persistence.NewDataSetError("GetByID", id, err)
	}

	return &dataset, nil
}

// List loads every stored session.
func (dr *DataSetRepository) List(ctx context.Context) ([]*models.DataSet, error) {
	root := os.DirFS(dr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset files: %w", err)
	}

	datasets := make([]*models.DataSet, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-len(".json")]

		dataset, err := dr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		datasets = append(datasets, dataset)
	}

	return datasets, nil
}

// Delete removes one session.
func (dr *DataSetRepository) Delete(_ context.Context, id string) error {
	if err := os.Remove(dr.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return persistence.NewDataSetError("Delete", id, persistence.ErrDataSetNotFound)
		}

		return persistence.NewDataSetError("Delete", id, err)
	}

	return nil
}

// DeleteOlderThan sweeps sessions whose last update predates the cutoff.
func (dr *DataSetRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	datasets, err := dr.List(ctx)
	if err != nil {
		return 0, err
	}

	swept := 0

	for _, dataset := range datasets {
		if dataset.UpdatedAt.Before(cutoff) {
			if err := dr.Delete(ctx, dataset.ID); err != nil {
				return swept, err
			}

			swept++
		}
	}

	return swept, nil
}
