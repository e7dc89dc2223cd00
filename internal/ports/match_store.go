package ports

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a match.
var ErrSnapshotNotFound = errors.New("match snapshot not found")

// MatchStorePort saves and loads serialized match snapshots.
type MatchStorePort interface {
	// SaveMatch stores the snapshot under key, replacing any previous one.
	SaveMatch(ctx context.Context, key string, snapshot []byte) error

	// LoadMatch returns the snapshot stored under key or ErrSnapshotNotFound.
	LoadMatch(ctx context.Context, key string) ([]byte, error)

	// DeleteMatch removes the snapshot. Deleting a missing key is not an error.
	DeleteMatch(ctx context.Context, key string) error
}
