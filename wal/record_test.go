package wal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vaultd/protocol"
)

func TestEncodeDecode_Set(t *testing.T) {
	rec := Record{TimestampMillis: 1234, Command: protocol.Command{Kind: protocol.KindSet, Key: "a", Value: "1"}}
	payload, err := encode(rec)
	require.NoError(t, err)

	got, err := decode(payload)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestEncodeDecode_Delete(t *testing.T) {
	rec := Record{TimestampMillis: 5678, Command: protocol.Command{Kind: protocol.KindDelete, Key: "a"}}
	payload, err := encode(rec)
	require.NoError(t, err)

	got, err := decode(payload)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestEncode_RejectsGet(t *testing.T) {
	_, err := encode(Record{Command: protocol.Command{Kind: protocol.KindGet, Key: "a"}})
	require.Error(t, err)
}

func TestDecode_LegacyGetEntry(t *testing.T) {
	rec, err := decode([]byte(`{"timestamp":1,"command":{"Get":{"key":"a"}}}`))
	require.NoError(t, err)
	require.Equal(t, protocol.KindGet, rec.Command.Kind)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := decode([]byte("not json"))
	require.Error(t, err)

	_, err = decode([]byte(`{"timestamp":1,"command":{}}`))
	require.Error(t, err)
}
