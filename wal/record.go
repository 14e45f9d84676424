package wal

import (
	"errors"

	"github.com/goccy/go-json"

	"vaultd/protocol"
)

// ErrInvalidRecord indicates a structurally malformed WAL line: valid
// JSON that doesn't describe a known command shape, or JSON that
// fails to parse at all.
var ErrInvalidRecord = errors.New("invalid wal record")

// commandKind mirrors protocol.CommandKind for JSON purposes. The WAL
// format is deliberately decoupled from the in-memory Command type so
// that either can evolve independently of the on-disk representation.
type commandKind string

const (
	kindSet    commandKind = "Set"
	kindDelete commandKind = "Delete"
	kindGet    commandKind = "Get" // never written; tolerated on replay, see record_test.go
)

// wireCommand is the JSON shape of a Command inside a record line:
// {"Set":{"key":"...","value":"..."}} or {"Delete":{"key":"..."}}.
type wireCommand struct {
	Set    *keyValue `json:"Set,omitempty"`
	Delete *keyOnly  `json:"Delete,omitempty"`
	Get    *keyOnly  `json:"Get,omitempty"`
}

type keyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type keyOnly struct {
	Key string `json:"key"`
}

// Record is one durable WAL entry: a millisecond UNIX timestamp paired
// with the command it records.
type Record struct {
	TimestampMillis int64
	Command         protocol.Command
}

// entryJSON is the on-disk shape of a Record line:
// {"timestamp":<u64>,"command":{...}}.
type entryJSON struct {
	Timestamp int64       `json:"timestamp"`
	Command   wireCommand `json:"command"`
}

// encode renders rec as a single JSON line (no trailing newline — the
// caller appends the record separator).
func encode(rec Record) ([]byte, error) {
	entry := entryJSON{Timestamp: rec.TimestampMillis}

	switch rec.Command.Kind {
	case protocol.KindSet:
		entry.Command.Set = &keyValue{Key: rec.Command.Key, Value: rec.Command.Value}
	case protocol.KindDelete:
		entry.Command.Delete = &keyOnly{Key: rec.Command.Key}
	default:
		// Get is pure and must never be durably logged — see spec.md
		// §3's WAL entry invariant and §9 Open Question 1.
		return nil, errors.New("wal: refusing to append a non-mutating command")
	}

	return json.Marshal(entry)
}

// decode parses a single JSON line back into a Record. A Get entry
// (only ever produced by a legacy writer) decodes successfully but
// carries protocol.KindGet, which Replay skips before calling apply.
func decode(line []byte) (Record, error) {
	var entry entryJSON
	if err := json.Unmarshal(line, &entry); err != nil {
		return Record{}, ErrInvalidRecord
	}

	rec := Record{TimestampMillis: entry.Timestamp}

	switch {
	case entry.Command.Set != nil:
		rec.Command = protocol.Command{
			Kind:  protocol.KindSet,
			Key:   entry.Command.Set.Key,
			Value: entry.Command.Set.Value,
		}
	case entry.Command.Delete != nil:
		rec.Command = protocol.Command{Kind: protocol.KindDelete, Key: entry.Command.Delete.Key}
	case entry.Command.Get != nil:
		rec.Command = protocol.Command{Kind: protocol.KindGet, Key: entry.Command.Get.Key}
	default:
		return Record{}, ErrInvalidRecord
	}

	return rec, nil
}
