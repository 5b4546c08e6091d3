package paper

import "sync"

// Entry is one simulated bar.
type Entry struct {
	Index    int
	Position float64
	Return   float64
	Cost     float64
	Value    float64
	Drawdown float64
}

// Ledger stores simulated bars in memory for inspection.
type Ledger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewLedger creates an empty ledger optionally pre-sizing storage.
func NewLedger(capacity int) *Ledger {
	if capacity < 0 {
		capacity = 0
	}
	return &Ledger{entries: make([]Entry, 0, capacity)}
}

// Record appends an entry to the ledger.
func (l *Ledger) Record(e Entry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

// Snapshot returns a copy of the recorded entries.
func (l *Ledger) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
