package nakama

import (
	"context"
	"errors"
	"testing"

	"chinchon/internal/ports"
)

func TestNakamaMatchStore(t *testing.T) {
	nk := newFakeNakama()
	store := NewNakamaMatchStore(nk)
	ctx := context.Background()

	if _, err := store.LoadMatch(ctx, "m1"); !errors.Is(err, ports.ErrSnapshotNotFound) {
		t.Fatalf("LoadMatch on empty store = %v", err)
	}
	if err := store.SaveMatch(ctx, "", []byte("{}")); err == nil {
		t.Fatalf("empty key should be rejected")
	}

	if err := store.SaveMatch(ctx, "m1", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("SaveMatch: %v", err)
	}
	if err := store.SaveMatch(ctx, "m1", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("SaveMatch: %v", err)
	}
	got, err := store.LoadMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("LoadMatch: %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Fatalf("LoadMatch = %s", got)
	}

	if err := store.DeleteMatch(ctx, "m1"); err != nil {
		t.Fatalf("DeleteMatch: %v", err)
	}
	if err := store.DeleteMatch(ctx, "m1"); err != nil {
		t.Fatalf("deleting twice: %v", err)
	}
	if _, err := store.LoadMatch(ctx, "m1"); !errors.Is(err, ports.ErrSnapshotNotFound) {
		t.Fatalf("LoadMatch after delete = %v", err)
	}
}
