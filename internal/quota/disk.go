package quota

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// sideFileSuffixes are the SQLite files that live next to the main database.
var sideFileSuffixes = []string{"", "-wal", "-shm", "-journal"}

// DiskEstimator reports the space used by a file-backed database.
//
// Usage is the combined size of the database file and its SQLite side files.
// The quota is Budget when set; otherwise it is usage plus the free space of
// the filesystem holding the database.
type DiskEstimator struct {
	Path   string
	Budget uint64

	// freeSpace is replaced in tests.
	freeSpace func(dir string) (uint64, error)
}

// NewDiskEstimator creates an estimator for the database at path.
// A zero budget means "whatever the filesystem has left".
func NewDiskEstimator(path string, budget uint64) *DiskEstimator {
	return &DiskEstimator{Path: path, Budget: budget, freeSpace: statfsFree}
}

// Estimate implements Estimator.
func (d *DiskEstimator) Estimate(ctx context.Context) (Estimate, error) {
	if err := ctx.Err(); err != nil {
		return Estimate{}, err
	}

	used, err := d.usage()
	if err != nil {
		return Estimate{}, err
	}

	if d.Budget > 0 {
		return Estimate{UsedBytes: used, TotalBytes: d.Budget}, nil
	}

	free, err := d.freeSpace(filepath.Dir(d.Path))
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{UsedBytes: used, TotalBytes: used + free}, nil
}

func (d *DiskEstimator) usage() (uint64, error) {
	var total uint64
	for _, suffix := range sideFileSuffixes {
		info, err := os.Stat(d.Path + suffix)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("stat %s: %w", d.Path+suffix, err)
		}
		total += uint64(info.Size())
	}
	return total, nil
}
