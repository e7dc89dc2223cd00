package nakama

import (
	"context"
	"fmt"

	"chinchon/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaMatchStore implements ports.MatchStorePort on system-owned Nakama storage objects.
type NakamaMatchStore struct {
	nk runtime.NakamaModule
}

// NewNakamaMatchStore creates a new match store adapter.
func NewNakamaMatchStore(nk runtime.NakamaModule) *NakamaMatchStore {
	return &NakamaMatchStore{nk: nk}
}

// SaveMatch writes the snapshot, replacing any previous version.
func (s *NakamaMatchStore) SaveMatch(ctx context.Context, key string, snapshot []byte) error {
	if key == "" {
		return fmt.Errorf("match key is required")
	}
	_, err := s.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      matchCollection,
			Key:             key,
			Value:           string(snapshot),
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to save match %s: %w", key, err)
	}
	return nil
}

// LoadMatch reads the snapshot stored under key.
func (s *NakamaMatchStore) LoadMatch(ctx context.Context, key string) ([]byte, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: matchCollection, Key: key},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", key, err)
	}
	if len(objects) == 0 {
		return nil, ports.ErrSnapshotNotFound
	}
	return []byte(objects[0].GetValue()), nil
}

// DeleteMatch removes the snapshot stored under key.
func (s *NakamaMatchStore) DeleteMatch(ctx context.Context, key string) error {
	err := s.nk.StorageDelete(ctx, []*runtime.StorageDelete{
		{Collection: matchCollection, Key: key},
	})
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", key, err)
	}
	return nil
}

var _ ports.MatchStorePort = (*NakamaMatchStore)(nil)
