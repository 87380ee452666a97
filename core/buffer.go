package core

import "sync"

// TransactionBuffer is the thread-safe pending-transaction pool a leader
// drains when it mints a block. Unlike the teacher's Mempool there is no
// size cap or age window — the election protocol has no fee market and
// transactions are gated by CliqueProtocol before they ever reach the
// buffer (spec §4.3 step 1), so everything admitted here is already known
// valid and is expected to drain quickly.
type TransactionBuffer struct {
	mu  sync.Mutex
	txs map[string]*Transaction
	ord []string // insertion order, preserved into minted blocks
}

// NewTransactionBuffer creates an empty buffer.
func NewTransactionBuffer() *TransactionBuffer {
	return &TransactionBuffer{txs: make(map[string]*Transaction)}
}

// Add inserts tx, deduplicating by identifier. Returns false if tx was
// already present.
func (b *TransactionBuffer) Add(tx *Transaction) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.txs[tx.ID]; exists {
		return false
	}
	b.txs[tx.ID] = tx
	b.ord = append(b.ord, tx.ID)
	return true
}

// Contains reports whether a transaction with the given identifier is
// already buffered.
func (b *TransactionBuffer) Contains(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.txs[id]
	return ok
}

// DrainAll removes and returns every buffered transaction in insertion
// order, for inclusion in a newly minted block (spec §4.3).
func (b *TransactionBuffer) DrainAll() []*Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Transaction, 0, len(b.ord))
	for _, id := range b.ord {
		if tx, ok := b.txs[id]; ok {
			out = append(out, tx)
		}
	}
	b.txs = make(map[string]*Transaction)
	b.ord = nil
	return out
}

// RemoveMatching drops any buffered transaction whose identifier appears in
// ids. Used when an inbound block already contains a transaction this node
// was holding as a co-leader, so it is not re-minted (spec §4.3).
func (b *TransactionBuffer) RemoveMatching(ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(ids) == 0 {
		return
	}
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	for id := range remove {
		delete(b.txs, id)
	}
	filtered := b.ord[:0]
	for _, id := range b.ord {
		if !remove[id] {
			filtered = append(filtered, id)
		}
	}
	b.ord = filtered
}

// Len returns the number of buffered transactions.
func (b *TransactionBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.txs)
}
