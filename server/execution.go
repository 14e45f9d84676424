package server

import (
	"vaultd/protocol"
	"vaultd/store"
)

// execute maps a parsed Command onto store operations and returns the
// Response to serialize. It contains no networking or concurrency
// logic, mirroring the teacher's separation between dispatch and I/O.
func execute(cmd protocol.Command, s store.Store) protocol.Response {
	switch cmd.Kind {
	case protocol.KindGet:
		v, ok := s.Get(cmd.Key)
		if !ok {
			return protocol.NotFound()
		}
		return protocol.Val(v)

	case protocol.KindSet:
		if err := s.Set(cmd.Key, cmd.Value); err != nil {
			return protocol.Err(err.Error())
		}
		return protocol.Ok()

	case protocol.KindDelete:
		if s.Delete(cmd.Key) {
			return protocol.Ok()
		}
		return protocol.NotFound()

	default:
		return protocol.Err("unrecognized command")
	}
}
