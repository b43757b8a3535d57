package guard

import (
	"sort"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// Registry maps each SSID to the BSSIDs seen advertising it, in first-seen
// order. The first BSSID is the legitimate one and never changes.
type Registry struct {
	m *shardedMap[*ssidEntry]
}

type ssidEntry struct {
	members []string
	seen    map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{m: newShardedMap[*ssidEntry]()}
}

// Register records bssid under ssid. It returns the legitimate BSSID and
// whether this call created the SSID entry.
func (r *Registry) Register(ssid, bssid string) (legit string, first bool) {
	r.m.with(ssid, func(items map[string]*ssidEntry) {
		e, ok := items[ssid]
		if !ok {
			items[ssid] = &ssidEntry{
				members: []string{bssid},
				seen:    map[string]struct{}{bssid: {}},
			}
			legit, first = bssid, true
			return
		}
		if _, dup := e.seen[bssid]; !dup {
			e.seen[bssid] = struct{}{}
			e.members = append(e.members, bssid)
		}
		legit = e.members[0]
	})
	return legit, first
}

// Legitimate returns the registered legitimate BSSID for ssid.
func (r *Registry) Legitimate(ssid string) (string, bool) {
	var (
		legit string
		ok    bool
	)
	r.m.with(ssid, func(items map[string]*ssidEntry) {
		if e, found := items[ssid]; found {
			legit, ok = e.members[0], true
		}
	})
	return legit, ok
}

// Snapshot lists every SSID, sorted by name.
func (r *Registry) Snapshot() []domain.SSIDRegistration {
	var out []domain.SSIDRegistration
	r.m.each(func(items map[string]*ssidEntry) {
		for ssid, e := range items {
			out = append(out, domain.SSIDRegistration{
				SSID:       ssid,
				Legitimate: e.members[0],
				Members:    append([]string(nil), e.members...),
			})
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SSID < out[j].SSID })
	return out
}

// Len returns the number of registered SSIDs.
func (r *Registry) Len() int {
	n := 0
	r.m.each(func(items map[string]*ssidEntry) { n += len(items) })
	return n
}
