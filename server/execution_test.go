package server

import (
	"testing"

	"vaultd/protocol"
	"vaultd/store"
)

func TestExecute_GetMissingKey(t *testing.T) {
	s := store.NewLocked()
	resp := execute(protocol.Command{Kind: protocol.KindGet, Key: "missing"}, s)
	if resp.Kind != protocol.ResponseNotFound {
		t.Fatalf("expected ResponseNotFound, got %v", resp.Kind)
	}
}

func TestExecute_SetThenGet(t *testing.T) {
	s := store.NewLocked()

	resp := execute(protocol.Command{Kind: protocol.KindSet, Key: "a", Value: "1"}, s)
	if resp.Kind != protocol.ResponseOK {
		t.Fatalf("expected ResponseOK, got %v", resp.Kind)
	}

	resp = execute(protocol.Command{Kind: protocol.KindGet, Key: "a"}, s)
	if resp.Kind != protocol.ResponseValue || resp.Value != "1" {
		t.Fatalf("expected value '1', got %+v", resp)
	}
}

func TestExecute_DeleteExistingKey(t *testing.T) {
	s := store.NewLocked()
	execute(protocol.Command{Kind: protocol.KindSet, Key: "a", Value: "1"}, s)

	resp := execute(protocol.Command{Kind: protocol.KindDelete, Key: "a"}, s)
	if resp.Kind != protocol.ResponseOK {
		t.Fatalf("expected ResponseOK, got %v", resp.Kind)
	}
}

func TestExecute_DeleteAbsentKey(t *testing.T) {
	s := store.NewLocked()

	resp := execute(protocol.Command{Kind: protocol.KindDelete, Key: "never-set"}, s)
	if resp.Kind != protocol.ResponseNotFound {
		t.Fatalf("expected ResponseNotFound for deleting an absent key, got %v", resp.Kind)
	}
}

func TestExecute_EmptyKeySetError(t *testing.T) {
	s := store.NewLocked()
	resp := execute(protocol.Command{Kind: protocol.KindSet, Key: "", Value: "1"}, s)
	if resp.Kind != protocol.ResponseError {
		t.Fatalf("expected ResponseError, got %v", resp.Kind)
	}
}
