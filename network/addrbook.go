package network

import (
	"github.com/tolelom/tolvote/storage"
)

// AddrBook persists the set of peer socket addresses a node has seen, so a
// restarted node can re-request a chain copy from the same sealers without
// waiting to be told about them again. This is not protocol state — spec
// §6 is explicit that the chain itself is never persisted — it is a purely
// local convenience the sealer set in genesis doesn't need but an operator
// restarting a node benefits from.
type AddrBook struct {
	db storage.DB
}

// NewAddrBook wraps a DB (normally a *storage.LevelDB rooted at the node's
// data directory) as an address book.
func NewAddrBook(db storage.DB) *AddrBook {
	return &AddrBook{db: db}
}

// Remember records addr as known-good.
func (a *AddrBook) Remember(addr string) error {
	return a.db.Set([]byte("peer:"+addr), []byte{1})
}

// Forget removes addr, e.g. after repeated dial failures.
func (a *AddrBook) Forget(addr string) error {
	return a.db.Delete([]byte("peer:" + addr))
}

// Known returns every remembered address.
func (a *AddrBook) Known() []string {
	it := a.db.NewIterator([]byte("peer:"))
	defer it.Release()
	var addrs []string
	for it.Next() {
		addrs = append(addrs, string(it.Key())[len("peer:"):])
	}
	return addrs
}
