package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/jwebster45206/royal-chronicle/pkg/world"
)

func testSlotStore(t *testing.T) *SlotStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saves.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewSlotStore(path, logger)
	if err != nil {
		t.Fatalf("NewSlotStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSlotSaveAndLoad(t *testing.T) {
	store := testSlotStore(t)
	ctx := context.Background()

	st := world.NewState()
	st.Day = 77
	st.Location = "york"
	st.Treasury = 4200

	if err := store.Save(ctx, 3, st.Snapshot()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := store.Load(ctx, 3)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected snapshot, got nil")
	}
	if loaded.Day != 77 || loaded.Location != "york" || loaded.Treasury != 4200 {
		t.Errorf("loaded = day=%d location=%s treasury=%d", loaded.Day, loaded.Location, loaded.Treasury)
	}
	if _, err := world.FromSnapshot(loaded); err != nil {
		t.Errorf("restored snapshot invalid: %v", err)
	}
}

func TestSlotOverwrite(t *testing.T) {
	store := testSlotStore(t)
	ctx := context.Background()

	st := world.NewState()
	if err := store.Save(ctx, 1, st.Snapshot()); err != nil {
		t.Fatal(err)
	}
	st.Day = 50
	if err := store.Save(ctx, 1, st.Snapshot()); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Day != 50 {
		t.Errorf("day = %d, want 50", loaded.Day)
	}
}

func TestSlotLoadEmpty(t *testing.T) {
	store := testSlotStore(t)

	loaded, err := store.Load(context.Background(), 2)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil for empty slot, got %+v", loaded)
	}
}

func TestSlotRange(t *testing.T) {
	store := testSlotStore(t)
	ctx := context.Background()
	snap := world.NewState().Snapshot()

	for _, slot := range []int{0, 6, -1} {
		if err := store.Save(ctx, slot, snap); !errors.Is(err, ErrBadSlot) {
			t.Errorf("Save(slot=%d) = %v, want ErrBadSlot", slot, err)
		}
		if _, err := store.Load(ctx, slot); !errors.Is(err, ErrBadSlot) {
			t.Errorf("Load(slot=%d) = %v, want ErrBadSlot", slot, err)
		}
	}
}

func TestSlotList(t *testing.T) {
	store := testSlotStore(t)
	ctx := context.Background()

	a := world.NewState()
	a.Day = 10
	b := world.NewState()
	b.Day = 20
	b.Location = "dover"

	if err := store.Save(ctx, 4, b.Snapshot()); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, 2, a.Snapshot()); err != nil {
		t.Fatal(err)
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("slots = %d, want 2", len(infos))
	}
	// Slot order, not save order.
	if infos[0].Slot != 2 || infos[1].Slot != 4 {
		t.Errorf("slot order = %d, %d", infos[0].Slot, infos[1].Slot)
	}
	if infos[1].Day != 20 || infos[1].Location != "dover" {
		t.Errorf("slot 4 info = %+v", infos[1])
	}
}

func TestSlotDelete(t *testing.T) {
	store := testSlotStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 5, world.NewState().Snapshot()); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, 5); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	loaded, err := store.Load(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Error("slot still occupied after delete")
	}

	// Clearing an already-empty slot is fine.
	if err := store.Delete(ctx, 5); err != nil {
		t.Errorf("Delete() on empty slot: %v", err)
	}
}
