package guard

import "sort"

// Ledger is the append-only set of BSSIDs that already received a verdict.
type Ledger struct {
	m *shardedMap[struct{}]
}

func NewLedger() *Ledger {
	return &Ledger{m: newShardedMap[struct{}]()}
}

// TryMark inserts bssid and reports whether this call was the one that did.
func (l *Ledger) TryMark(bssid string) bool {
	var won bool
	l.m.with(bssid, func(items map[string]struct{}) {
		if _, ok := items[bssid]; ok {
			return
		}
		items[bssid] = struct{}{}
		won = true
	})
	return won
}

// List returns every marked BSSID, sorted.
func (l *Ledger) List() []string {
	var out []string
	l.m.each(func(items map[string]struct{}) {
		for b := range items {
			out = append(out, b)
		}
	})
	sort.Strings(out)
	return out
}
