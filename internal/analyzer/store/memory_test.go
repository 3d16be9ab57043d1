package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/entity"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/frame"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgerror"
)

func testDataset(t *testing.T, id string) entity.Dataset {
	t.Helper()

	f, err := frame.ReadCSV(strings.NewReader("a,b\n1,2\n3,4\n"))
	if err != nil {
		t.Fatalf("ReadCSV() err = %v", err)
	}

	return entity.Dataset{ID: id, Filename: id + ".csv", Format: entity.FormatCSV, Frame: f}
}

func TestInMemoryStore_Save_Duplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore(time.Minute)
	ds := testDataset(t, "ds-1")

	if err := store.Save(ctx, ds); err != nil {
		t.Fatalf("Save() err = %v", err)
	}

	err := store.Save(ctx, ds)
	if err == nil {
		t.Fatal("Save() expected error, got nil")
	}

	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Save() expected pkgerror.Error, got %T", err)
	}

	if perr.Code() != pkgerror.CodeConflict {
		t.Fatalf("Save() error code = %v, want %v", perr.Code(), pkgerror.CodeConflict)
	}
}

func TestInMemoryStore_Update_And_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore(time.Minute)

	if err := store.Save(ctx, testDataset(t, "ds-1")); err != nil {
		t.Fatalf("Save() err = %v", err)
	}

	err := store.Update(ctx, "ds-1", func(ds *entity.Dataset) error {
		ds.Frame = ds.Frame.Head(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Update() err = %v", err)
	}

	got, err := store.Get(ctx, "ds-1")
	if err != nil {
		t.Fatalf("Get() err = %v", err)
	}
	if got.Frame.Rows() != 1 {
		t.Fatalf("Get() rows = %d, want 1", got.Frame.Rows())
	}

	errStop := errors.New("stop")
	err = store.Update(ctx, "ds-1", func(ds *entity.Dataset) error {
		ds.Filename = "changed.csv"
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("Update() err = %v, want %v", err, errStop)
	}

	got, _ = store.Get(ctx, "ds-1")
	if got.Filename != "ds-1.csv" {
		t.Fatalf("failed Update() must not apply changes, filename = %q", got.Filename)
	}
}

func TestInMemoryStore_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore(time.Minute)

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("Get() err = %v, want %v", err, pkgerror.ErrNotFound)
	}

	if err := store.Update(ctx, "missing", func(*entity.Dataset) error { return nil }); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("Update() err = %v, want %v", err, pkgerror.ErrNotFound)
	}

	if err := store.Delete(ctx, "missing"); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("Delete() err = %v, want %v", err, pkgerror.ErrNotFound)
	}
}

func TestInMemoryStore_Sweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore(10 * time.Minute)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_ = store.Save(ctx, testDataset(t, "old"))
	_ = store.Save(ctx, testDataset(t, "fresh"))

	now = now.Add(8 * time.Minute)
	if _, err := store.Get(ctx, "fresh"); err != nil {
		t.Fatalf("Get() err = %v", err)
	}

	now = now.Add(5 * time.Minute)
	if removed := store.Sweep(ctx); removed != 1 {
		t.Fatalf("Sweep() removed = %d, want 1", removed)
	}

	if _, err := store.Get(ctx, "old"); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("expected old dataset to be evicted, err = %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
}

func TestInMemoryStore_SweepDisabled(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore(0)
	_ = store.Save(context.Background(), testDataset(t, "ds"))

	if removed := store.Sweep(context.Background()); removed != 0 {
		t.Fatalf("Sweep() removed = %d, want 0", removed)
	}
}

func TestInMemoryStore_Clear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore(time.Minute)
	_ = store.Save(ctx, testDataset(t, "a"))
	_ = store.Save(ctx, testDataset(t, "b"))

	if n := store.Clear(ctx); n != 2 {
		t.Fatalf("Clear() = %d, want 2", n)
	}
	if _, err := store.Get(ctx, "a"); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("Get() after Clear err = %v, want ErrNotFound", err)
	}
	if err := store.Save(ctx, testDataset(t, "a")); err != nil {
		t.Fatalf("Save() after Clear err = %v", err)
	}
}

func TestInMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore(time.Minute)
	_ = store.Save(ctx, testDataset(t, "ds"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Get(ctx, "ds")
		}()
		go func() {
			defer wg.Done()
			_ = store.Update(ctx, "ds", func(ds *entity.Dataset) error {
				ds.Frame = ds.Frame.FillZero()
				return nil
			})
		}()
	}
	wg.Wait()

	if _, err := store.Get(ctx, "ds"); err != nil {
		t.Fatalf("Get() err = %v", err)
	}
}
