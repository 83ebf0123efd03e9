package security

import (
	"sort"
	"sync"
	"time"
)

type BlockEntry struct {
	Ip        string     `json:"ip"`
	Reason    string     `json:"reason"`
	BlockedAt time.Time  `json:"blockedAt"`
	Until     *time.Time `json:"until,omitempty"`
	Permanent bool       `json:"permanent"`
	Auto      bool       `json:"auto"`
}

func (e *BlockEntry) expired(now time.Time) bool {
	return !e.Permanent && e.Until != nil && !now.Before(*e.Until)
}

type Blocklist struct {
	mu      sync.Mutex
	entries map[string]*BlockEntry
	now     func() time.Time
}

func NewBlocklist(now func() time.Time) *Blocklist {
	if now == nil {
		now = time.Now
	}
	return &Blocklist{entries: make(map[string]*BlockEntry), now: now}
}

// Block adds or replaces the entry for ip. A ttl <= 0 blocks permanently.
func (b *Blocklist) Block(ip, reason string, ttl time.Duration, auto bool) BlockEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	entry := &BlockEntry{Ip: ip, Reason: reason, BlockedAt: now, Auto: auto}
	if ttl > 0 {
		until := now.Add(ttl)
		entry.Until = &until
	} else {
		entry.Permanent = true
	}
	b.entries[ip] = entry
	return *entry
}

func (b *Blocklist) Unblock(ip string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.entries[ip]
	delete(b.entries, ip)
	return ok
}

// IsBlocked reports whether ip is blocked right now. Expired entries are removed on the way.
func (b *Blocklist) IsBlocked(ip string) (BlockEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[ip]
	if !ok {
		return BlockEntry{}, false
	}
	if entry.expired(b.now()) {
		delete(b.entries, ip)
		return BlockEntry{}, false
	}
	return *entry, true
}

// List returns the active entries, newest first.
func (b *Blocklist) List() []BlockEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	res := make([]BlockEntry, 0, len(b.entries))
	for ip, e := range b.entries {
		if e.expired(now) {
			delete(b.entries, ip)
			continue
		}
		res = append(res, *e)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].BlockedAt.Equal(res[j].BlockedAt) {
			return res[i].Ip < res[j].Ip
		}
		return res[i].BlockedAt.After(res[j].BlockedAt)
	})
	return res
}

func (b *Blocklist) Sweep() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	n := 0
	for ip, e := range b.entries {
		if e.expired(now) {
			delete(b.entries, ip)
			n++
		}
	}
	return n
}
