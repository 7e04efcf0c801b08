package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/tidygrid/tidygrid/pkg/persistence"
)

const (
	datasetKeyPrefix = "tidygrid:dataset:"
	datasetIndexKey  = "tidygrid:datasets"
)

// DataSetRepository stores each session as one JSON value plus a set-based
// index for listing.
type DataSetRepository struct {
	client *goredis.Client
}

// NewDataSetRepository creates a new dataset repository.
func NewDataSetRepository(client *goredis.Client) *DataSetRepository {
	return &DataSetRepository{client: client}
}

func datasetKey(id string) string {
	return datasetKeyPrefix + id
}

// Save writes the full session snapshot and registers it in the index.
func (dr *DataSetRepository) Save(ctx context.Context, dataset *models.DataSet) error {
	payload, err := json.Marshal(dataset)
	if err != nil {
		return persistence.NewDataSetError("Save", dataset.ID, err)
	}

	pipe := dr.client.TxPipeline()
	pipe.Set(ctx, datasetKey(dataset.ID), payload, 0)
	pipe.SAdd(ctx, datasetIndexKey, dataset.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewDataSetError("Save", dataset.ID, err)
	}

	return nil
}

// GetByID loads one session snapshot.
func (dr *DataSetRepository) GetByID(ctx context.Context, id string) (*models.DataSet, error) {
	payload, err := dr.client.Get(ctx, datasetKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
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

// List loads every indexed session. Index entries whose value expired are
// unregistered on the way.
func (dr *DataSetRepository) List(ctx context.Context) ([]*models.DataSet, error) {
	ids, err := dr.client.SMembers(ctx, datasetIndexKey).Result()
	if err != nil {
		return nil, persistence.NewDataSetError("List", "", err)
	}

	datasets := make([]*models.DataSet, 0, len(ids))

	for _, id := range ids {
		dataset, err := dr.GetByID(ctx, id)
		if err != nil {
			if persistence.IsDataSetNotFound(err) {
				dr.client.SRem(ctx, datasetIndexKey, id)

				continue
			}

			return nil, err
		}

		datasets = append(datasets, dataset)
	}

	return datasets, nil
}

// Delete removes one session and its index entry.
func (dr *DataSetRepository) Delete(ctx context.Context, id string) error {
	removed, err := dr.client.Del(ctx, datasetKey(id)).Result()
	if err != nil {
		return persistence.NewDataSetError("Delete", id, err)
	}

	dr.client.SRem(ctx, datasetIndexKey, id)

	if removed == 0 {
		return persistence.NewDataSetError("Delete", id, persistence.ErrDataSetNotFound)
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
