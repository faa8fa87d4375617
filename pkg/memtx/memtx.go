// Package memtx is a small in-process transactional store used by the in-memory
// persistence adapters (tests and `seed -dry-run`).
//
// A World holds named tables behind one RW mutex. WithinTx takes the write lock for
// the whole unit of work, so transactions are fully serialized. Tables are cloned on
// first write inside a transaction and swapped in only when fn returns nil; a failed
// or panicking transaction leaves no trace. Readers outside a transaction take the
// read lock and always observe committed state.
package memtx

import (
	"context"
	"fmt"
	"sync"
)

// Table is one named collection in a World. Clone must return a deep copy that
// shares no mutable state with the receiver.
type Table interface {
	Clone() Table
}

// World is a set of tables committed atomically together.
type World struct {
	mu     sync.RWMutex
	tables map[string]Table
}

// New returns a World holding the given tables.
func New(tables map[string]Table) *World {
	w := &World{tables: make(map[string]Table, len(tables))}
	for name, t := range tables {
		w.tables[name] = t
	}
	return w
}

// Register adds a table if none with that name exists yet and returns the stored one.
func (w *World) Register(name string, t Table) Table {
	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.tables[name]; ok {
		return existing
	}
	w.tables[name] = t
	return t
}

type txKey struct{}

type tx struct {
	world       *World
	tables      map[string]Table
	dirty       map[string]bool
	afterCommit []func()
}

// WithinTx runs fn as one serialized unit of work. A nested call with a ctx that
// already carries a transaction of this World joins it.
func (w *World) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t, ok := ctx.Value(txKey{}).(*tx); ok && t.world == w {
		return fn(ctx)
	}

	t, err := w.run(ctx, fn)
	if err != nil {
		return err
	}
	for _, f := range t.afterCommit {
		f()
	}
	return nil
}

func (w *World) run(ctx context.Context, fn func(ctx context.Context) error) (*tx, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t := &tx{world: w, tables: make(map[string]Table, len(w.tables)), dirty: map[string]bool{}}
	for name, tbl := range w.tables {
		t.tables[name] = tbl
	}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return nil, err
	}
	for name := range t.dirty {
		w.tables[name] = t.tables[name]
	}
	return t, nil
}

// View runs fn with read access to the named table. Inside a transaction it sees the
// transaction's uncommitted writes; outside it sees the last committed state.
func View[T Table](ctx context.Context, w *World, name string, fn func(T) error) error {
	if t, ok := ctx.Value(txKey{}).(*tx); ok && t.world == w {
		tbl, err := lookup[T](t.tables, name)
		if err != nil {
			return err
		}
		return fn(tbl)
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	tbl, err := lookup[T](w.tables, name)
	if err != nil {
		return err
	}
	return fn(tbl)
}

// Update runs fn with write access to the named table. Outside a transaction it
// opens one for the single call.
func Update[T Table](ctx context.Context, w *World, name string, fn func(T) error) error {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok || t.world != w {
		return w.WithinTx(ctx, func(ctx context.Context) error {
			return Update(ctx, w, name, fn)
		})
	}
	if !t.dirty[name] {
		cur, ok := t.tables[name]
		if !ok {
			return fmt.Errorf("memtx: unknown table %q", name)
		}
		t.tables[name] = cur.Clone()
		t.dirty[name] = true
	}
	tbl, err := lookup[T](t.tables, name)
	if err != nil {
		return err
	}
	return fn(tbl)
}

// AfterCommit schedules f to run once the transaction carried by ctx commits.
// Outside a transaction f runs immediately.
func AfterCommit(ctx context.Context, f func()) {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		t.afterCommit = append(t.afterCommit, f)
		return
	}
	f()
}

func lookup[T Table](tables map[string]Table, name string) (T, error) {
	var zero T
	tbl, ok := tables[name]
	if !ok {
		return zero, fmt.Errorf("memtx: unknown table %q", name)
	}
	typed, ok := tbl.(T)
	if !ok {
		return zero, fmt.Errorf("memtx: table %q has type %T", name, tbl)
	}
	return typed, nil
}
