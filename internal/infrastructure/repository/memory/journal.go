package memory

// txJournal holds the value each key had before the open transaction first wrote it.
// Rollback restores only those keys, so rows the transaction never touched keep any
// writes made meanwhile.
type txJournal struct {
	entries map[journalMark]*journalEntry
	order   []*journalEntry
}

type journalMark struct {
	table string
	key   any
}

type journalEntry struct {
	prev    any
	existed bool
	undo    func(prev any, existed bool)
}

// track must run with s.mu held, before the write lands in m. A write from inside the
// transaction remembers the key's prior value once. A write from outside it to a key
// the transaction already holds becomes the value a rollback restores, like a row
// update queued behind the transaction's lock.
func track[K comparable, V any](s *Store, inTx bool, table string, m map[K]V, key K, next V) {
	j := s.journal
	if j == nil {
		return
	}
	mark := journalMark{table: table, key: key}
	entry, seen := j.entries[mark]
	if !inTx {
		if seen {
			entry.prev, entry.existed = next, true
		}
		return
	}
	if seen {
		return
	}

	prev, existed := m[key]
	entry = &journalEntry{
		prev:    prev,
		existed: existed,
		undo: func(prev any, existed bool) {
			if existed {
				m[key] = prev.(V)
				return
			}
			delete(m, key)
		},
	}
	j.entries[mark] = entry
	j.order = append(j.order, entry)
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journal = &txJournal{entries: make(map[journalMark]*journalEntry)}
}

func (s *Store) commit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journal = nil
}

func (s *Store) rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := s.journal
	s.journal = nil
	if j == nil {
		return
	}
	for i := len(j.order) - 1; i >= 0; i-- {
		entry := j.order[i]
		entry.undo(entry.prev, entry.existed)
	}
}
