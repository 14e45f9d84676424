package server

import (
	"strconv"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// registry tracks live connection handlers; its count is what
// Server.ActiveConnections reports. It is not on the mutation path —
// the keyspace's own locking is what spec.md §5 actually governs — so
// a lock-free concurrent map is a good fit here, grounded on
// Jipok-go-persist's use of xsync.Map for its own bookkeeping.
type registry struct {
	conns  *xsync.Map
	nextID atomic.Uint64
}

func newRegistry() *registry {
	return &registry{conns: xsync.NewMap()}
}

// add registers a new handler and returns an opaque id to pass to
// remove on exit.
func (r *registry) add() string {
	key := strconv.FormatUint(r.nextID.Add(1), 10)
	r.conns.Store(key, struct{}{})
	return key
}

func (r *registry) remove(id string) { r.conns.Delete(id) }

func (r *registry) count() int {
	n := 0
	r.conns.Range(func(_ string, _ interface{}) bool {
		n++
		return true
	})
	return n
}
