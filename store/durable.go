package store

import (
	"vaultd/protocol"
	"vaultd/wal"
)

// Durable wraps a Store with write-ahead-log durability, enforcing the
// fixed ordering from spec.md §4.3: for every mutation, the WAL append
// (mutex-serialized, flushed) completes before the in-memory mutation
// is applied. Callers cannot observe a mutation that is not already
// durable, and a WAL failure leaves memory untouched.
//
// This is the encapsulation design note §9 calls for ("Durability
// ordering ... should be encapsulated in the store so callers cannot
// bypass it") — every write path in this type goes through the WAL
// before touching the wrapped Store.
type Durable struct {
	inner Store
	log   *wal.WAL
}

// NewDurable wraps inner with w and replays w's existing contents into
// inner before returning, reconstructing whatever keyspace the WAL
// already reflects (spec.md §3's Lifecycle: "populated by WAL replay").
// Replay is synchronous and runs to completion here, before any
// concurrent Set/Delete can reach inner — matching design note §9's
// requirement that replay not reenter any concurrent runtime.
func NewDurable(inner Store, w *wal.WAL) (*Durable, error) {
	err := w.Replay(func(cmd protocol.Command) error {
		switch cmd.Kind {
		case protocol.KindSet:
			return inner.Set(cmd.Key, cmd.Value)
		case protocol.KindDelete:
			inner.Delete(cmd.Key)
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Durable{inner: inner, log: w}, nil
}

// Set appends a Set record to the WAL, then applies it in memory.
func (d *Durable) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := d.log.Append(protocol.Command{Kind: protocol.KindSet, Key: key, Value: value}); err != nil {
		return err
	}
	return d.inner.Set(key, value)
}

// Get bypasses the WAL entirely — reads never touch durable storage,
// per spec.md §4.3 ("Read-only store access never takes the WAL
// mutex").
func (d *Durable) Get(key string) (string, bool) { return d.inner.Get(key) }

// Delete unconditionally appends a Delete record — spec.md §4.3's
// "Note on delete": the WAL records every delete attempt whether or
// not the key was present, which is the simplest rule that stays
// idempotent on replay.
func (d *Durable) Delete(key string) bool {
	if err := d.log.Append(protocol.Command{Kind: protocol.KindDelete, Key: key}); err != nil {
		// WAL failure aborts the operation; memory is left untouched,
		// matching the append-then-mutate ordering for Set.
		return false
	}
	return d.inner.Delete(key)
}

func (d *Durable) Exists(key string) bool { return d.inner.Exists(key) }
func (d *Durable) Snapshot() []Entry      { return d.inner.Snapshot() }
func (d *Durable) Len() int               { return d.inner.Len() }

// Clear resets the in-memory mapping only; it does not truncate the
// WAL, per spec.md §4.3's operations table.
func (d *Durable) Clear() { d.inner.Clear() }

// Compact rewrites the WAL to the minimum set of Set entries needed to
// reproduce the current keyspace, using d's own Snapshot as the source
// of truth. Exposed for external policy — the core never triggers it
// automatically, per spec.md §4.2.
func (d *Durable) Compact() error {
	return d.log.Compact(func() []wal.Item {
		entries := d.inner.Snapshot()
		items := make([]wal.Item, len(entries))
		for i, e := range entries {
			items[i] = wal.Item{Key: e.Key, Value: e.Value}
		}
		return items
	})
}
