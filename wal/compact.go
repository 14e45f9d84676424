package wal

import (
	"bufio"
	"os"
	"path/filepath"

	"vaultd/protocol"
)

func newBufWriter(f *os.File) *bufio.Writer { return bufio.NewWriter(f) }

// Item is one live keyspace mapping, as handed to Compact by the
// store's snapshot function. It is intentionally decoupled from any
// store-internal entry type, mirroring the push-based boundary the
// teacher's snapshot package used between the store and its durability
// layer.
type Item struct {
	Key   string
	Value string
}

// Compact rewrites the WAL to the minimum set of Set entries needed to
// reproduce the current keyspace, per spec.md §4.2:
//
//  1. snapshot() is called under whatever consistency the store
//     provides, yielding the current (k, v) pairs.
//  2. All entries are written to a sibling temporary file and flushed.
//  3. The temporary file is renamed over the WAL path atomically.
//  4. The appender is reopened against the new file.
//
// Compact holds the append mutex for the duration of steps 2-4 so no
// mutation is appended to the old file after the rename.
func (w *WAL) Compact(snapshot func() []Item) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, ".wal-compact-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := writeCompactedEntries(tmp, snapshot()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return err
	}

	// Reopen the appender against the freshly-rotated file: the old
	// *os.File handle still refers to the (now-unlinked on most
	// filesystems) previous inode and must not keep receiving writes.
	if err := w.writer.Flush(); err != nil {
		return err
	}
	_ = w.file.Close()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return err
	}
	w.file = f
	w.writer = newBufWriter(f)
	return nil
}

func writeCompactedEntries(f *os.File, items []Item) error {
	bw := newBufWriter(f)
	for _, it := range items {
		rec := Record{
			TimestampMillis: nowMillis(),
			Command:         protocol.Command{Kind: protocol.KindSet, Key: it.Key, Value: it.Value},
		}
		payload, err := encode(rec)
		if err != nil {
			return err
		}
		if _, err := bw.Write(payload); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
