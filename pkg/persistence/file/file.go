// Package file provides file-based persistence for editing sessions.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/tidygrid/tidygrid/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface on the file
// system. Suitable for single-instance deployments and tests.
type Persistence struct {
	root        string
	datasetRepo *DataSetRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:        cleanRoot,
		datasetRepo: NewDataSetRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. Nothing to release for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) DataSetRepository() persistence.DataSetRepository {
	return fp.datasetRepo
}
