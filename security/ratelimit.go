package security

import (
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"golang.org/x/time/rate"
)

type Class int

const (
	ClassRead Class = iota
	// ClassWrite covers form posts and the chat proxy; it has its own, stricter bucket.
	ClassWrite
)

type limiterEntry struct {
	read     *rate.Limiter
	write    *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket pair per IP in an LRU, so recency order is lastSeen
// order. When full, the least recently seen IP is dropped in constant time.
type RateLimiter struct {
	mu         sync.Mutex
	readLimit  rate.Limit
	readBurst  int
	writeLimit rate.Limit
	writeBurst int
	maxEntries int
	idleTTL    time.Duration
	entries    *simplelru.LRU[string, *limiterEntry]
	now        func() time.Time
}

func NewRateLimiter(rps float64, burst int, writeRps float64, writeBurst int, maxEntries int, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	// only fails for a non-positive size
	entries, _ := simplelru.NewLRU[string, *limiterEntry](maxEntries, nil)
	return &RateLimiter{
		readLimit:  rate.Limit(rps),
		readBurst:  burst,
		writeLimit: rate.Limit(writeRps),
		writeBurst: writeBurst,
		maxEntries: maxEntries,
		idleTTL:    10 * time.Minute,
		entries:    entries,
		now:        now,
	}
}

// Allow takes a token for ip. When the bucket is empty it returns false and how long
// the caller should wait before retrying.
func (l *RateLimiter) Allow(ip string, class Class) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries.Get(ip)
	if !ok {
		entry = &limiterEntry{
			read:  rate.NewLimiter(l.readLimit, l.readBurst),
			write: rate.NewLimiter(l.writeLimit, l.writeBurst),
		}
		l.entries.Add(ip, entry)
	}
	entry.lastSeen = now

	lim := entry.read
	if class == ClassWrite {
		lim = entry.write
	}

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Minute
	}
	delay := res.DelayFrom(now)
	if delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Sweep drops IPs idle for longer than the idle ttl. Their buckets would be full again anyway.
func (l *RateLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	n := 0
	for {
		_, e, ok := l.entries.GetOldest()
		if !ok || !e.lastSeen.Before(cutoff) {
			return n
		}
		l.entries.RemoveOldest()
		n++
	}
}

func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries.Len()
}

// RetryAfterSeconds rounds a wait up to whole seconds, minimum 1.
func RetryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
