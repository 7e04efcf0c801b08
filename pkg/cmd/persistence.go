// Package cmd provides shared factories for the command line binaries.
package cmd

import (
	"fmt"
	"strings"

	"github.com/tidygrid/tidygrid/pkg/persistence"
	"github.com/tidygrid/tidygrid/pkg/persistence/file"
	"github.com/tidygrid/tidygrid/pkg/persistence/redis"
)

var supportedPersistenceProviders = []string{"file", "redis"}

// NewPersistence selects a storage backend from the database URL scheme.
// Unknown schemes fall back to file storage rooted at the URL path.
func NewPersistence(databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "redis":
		store, err := redis.NewPersistence(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis persistence: %w", err)
		}

		return store, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
