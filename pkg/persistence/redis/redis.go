// Package redis provides Redis-backed persistence for editing sessions,
// for deployments where several API instances share state.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/tidygrid/tidygrid/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface on Redis.
type Persistence struct {
	client      *goredis.Client
	datasetRepo *DataSetRepository
}

// NewPersistence connects to the Redis instance named by the URL
// (redis://host:port/db).
func NewPersistence(redisURL string) (persistence.Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	return &Persistence{
		client:      client,
		datasetRepo: NewDataSetRepository(client),
	}, nil
}

// Close releases the underlying connection pool.
func (rp *Persistence) Close(_ context.Context) error {
	return rp.client.Close()
}

// HealthCheck pings the server.
func (rp *Persistence) HealthCheck(ctx context.Context) error {
	return rp.client.Ping(ctx).Err()
}

func (rp *Persistence) DataSetRepository() persistence.DataSetRepository {
	return rp.datasetRepo
}
