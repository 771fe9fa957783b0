package quota

import (
	"context"

	"github.com/bboykorg/filecloude/internal/models"
)

// FileLister is the slice of the metadata store the accountant needs.
type FileLister interface {
	ListFilesForUser(ctx context.Context, userID int64) ([]models.File, error)
}

// BlobStore is the slice of the storage layer the accountant needs.
type BlobStore interface {
	Size(filename string) (int64, error)
}

// Accountant computes a user's current consumption by summing the
// on-disk sizes of the blobs their file rows point at.
type Accountant struct {
	files FileLister
	blobs BlobStore
}

func NewAccountant(files FileLister, blobs BlobStore) *Accountant {
	return &Accountant{files: files, blobs: blobs}
}

// UsedBytes returns the total stored bytes for userID. A blob that
// cannot be stat'ed (missing, permissions, transient I/O) contributes
// zero: accounting degrades rather than failing the request when the
// metadata store and the filesystem have drifted. Errors from the
// metadata query itself propagate.
func (a *Accountant) UsedBytes(ctx context.Context, userID int64) (int64, error) {
	files, err := a.files.ListFilesForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, f := range files {
		size, err := a.blobs.Size(f.Filename)
		if err != nil {
			continue
		}
		total += size
	}

	return total, nil
}
