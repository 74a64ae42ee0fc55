package querycache

import (
	"fmt"
	"sort"
	"strings"
)

// ScopeAggregate tags overview/aggregate queries (counts, totals). Any
// confirmed write can move them, so they are invalidated on every write.
const ScopeAggregate = "aggregate"

// Key is the canonical identity of one mirror query. Two reads share a cache
// entry only when every field matches, so differently parameterized queries
// never collide.
type Key struct {
	// Kind is the entity kind plus operation, e.g. "bounties.list".
	Kind string
	// Scopes are the address scopes this result depends on (entity address,
	// owning user address) plus ScopeAggregate for overview reads.
	Scopes []string

	Page   int
	Limit  int
	SortBy string
	Order  string
	// Filter is the canonical rendering of the structured filter predicate,
	// e.g. "creator_addr=0x0...a". Built by the read services, never caller
	// text.
	Filter string
}

func (k Key) canonical() string {
	scopes := append([]string(nil), k.Scopes...)
	sort.Strings(scopes)

	var b strings.Builder
	b.WriteString(k.Kind)
	b.WriteByte('|')
	b.WriteString(strings.Join(scopes, ","))
	fmt.Fprintf(&b, "|p%d|l%d|", k.Page, k.Limit)
	b.WriteString(k.SortBy)
	b.WriteByte('|')
	b.WriteString(k.Order)
	b.WriteByte('|')
	b.WriteString(k.Filter)
	return b.String()
}

func (k Key) hasAnyScope(scopes []string) bool {
	for _, want := range scopes {
		for _, have := range k.Scopes {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Version orders mirror rows for the same address: the indexing pipeline
// bumps (last_update_timestamp, last_update_event_idx) on every event, and a
// refetch must never hand back an older row than one already cached.
type Version struct {
	Timestamp int64
	EventIdx  int64
}

func (v Version) Newer(o Version) bool {
	if v.Timestamp != o.Timestamp {
		return v.Timestamp > o.Timestamp
	}
	return v.EventIdx > o.EventIdx
}

// Versioned is implemented by cached values that carry a mirror version.
// Values without a version skip the monotonic guard.
type Versioned interface {
	MirrorVersion() Version
}
