package memtx

import (
	"context"
	"errors"
	"maps"
	"sync"
	"testing"
)

type counters map[string]int

func (c counters) Clone() Table { return maps.Clone(c) }

func newWorld() *World {
	return New(map[string]Table{"c": counters{"n": 0}})
}

func read(t *testing.T, w *World, key string) int {
	t.Helper()
	var v int
	if err := View(context.Background(), w, "c", func(c counters) error {
		v = c[key]
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	return v
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	w := newWorld()
	err := w.WithinTx(context.Background(), func(ctx context.Context) error {
		return Update(ctx, w, "c", func(c counters) error {
			c["n"] = 5
			return nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := read(t, w, "n"); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	w := newWorld()
	boom := errors.New("boom")
	committed := false
	err := w.WithinTx(context.Background(), func(ctx context.Context) error {
		AfterCommit(ctx, func() { committed = true })
		if err := Update(ctx, w, "c", func(c counters) error {
			c["n"] = 9
			return nil
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := read(t, w, "n"); got != 0 {
		t.Fatalf("rolled back write leaked: %d", got)
	}
	if committed {
		t.Fatal("after-commit hook ran for a failed transaction")
	}
}

func TestWithinTx_SeesOwnWritesAndJoinsNested(t *testing.T) {
	w := newWorld()
	err := w.WithinTx(context.Background(), func(ctx context.Context) error {
		if err := Update(ctx, w, "c", func(c counters) error {
			c["n"] = 1
			return nil
		}); err != nil {
			return err
		}
		return w.WithinTx(ctx, func(ctx context.Context) error {
			return View(ctx, w, "c", func(c counters) error {
				if c["n"] != 1 {
					t.Errorf("nested tx did not see outer write, got %d", c["n"])
				}
				return nil
			})
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithinTx_PanicLeavesNoTrace(t *testing.T) {
	w := newWorld()
	func() {
		defer func() { _ = recover() }()
		_ = w.WithinTx(context.Background(), func(ctx context.Context) error {
			_ = Update(ctx, w, "c", func(c counters) error {
				c["n"] = 7
				return nil
			})
			panic("mid-transaction")
		})
	}()
	if got := read(t, w, "n"); got != 0 {
		t.Fatalf("panicked transaction leaked a write: %d", got)
	}
}

func TestUpdate_OutsideTxCommitsImmediately(t *testing.T) {
	w := newWorld()
	if err := Update(context.Background(), w, "c", func(c counters) error {
		c["n"]++
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := read(t, w, "n"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestWithinTx_SerializesConcurrentIncrements(t *testing.T) {
	w := newWorld()
	const workers = 50
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.WithinTx(context.Background(), func(ctx context.Context) error {
				var cur int
				_ = View(ctx, w, "c", func(c counters) error { cur = c["n"]; return nil })
				return Update(ctx, w, "c", func(c counters) error {
					c["n"] = cur + 1
					return nil
				})
			})
		}()
	}
	wg.Wait()
	if got := read(t, w, "n"); got != workers {
		t.Fatalf("lost updates: expected %d, got %d", workers, got)
	}
}

func TestView_UnknownTable(t *testing.T) {
	w := newWorld()
	err := View(context.Background(), w, "missing", func(c counters) error { return nil })
	if err == nil {
		t.Fatal("expected error for unknown table")
	}
}
