package security

import (
	"sort"
	"sync"
	"time"
)

var ThreatScores = map[ThreatKind]int{
	ThreatBot:            5,
	ThreatSQLi:           10,
	ThreatXSS:            10,
	ThreatPathTraversal:  8,
	ThreatSuspiciousPath: 3,
	ThreatRateLimited:    1,
}

type suspect struct {
	score   int
	firstAt time.Time
	lastAt  time.Time
	kinds   map[ThreatKind]int
}

type SuspectStat struct {
	Ip      string             `json:"ip"`
	Score   int                `json:"score"`
	FirstAt time.Time          `json:"firstAt"`
	LastAt  time.Time          `json:"lastAt"`
	Kinds   map[ThreatKind]int `json:"kinds"`
}

// Suspicion accumulates per-IP scores. A score decays to zero once the IP has been quiet
// for a full window.
type Suspicion struct {
	mu         sync.Mutex
	window     time.Duration
	maxEntries int
	entries    map[string]*suspect
	now        func() time.Time
}

func NewSuspicion(window time.Duration, maxEntries int, now func() time.Time) *Suspicion {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &Suspicion{
		window:     window,
		maxEntries: maxEntries,
		entries:    make(map[string]*suspect),
		now:        now,
	}
}

// Add records one occurrence of kind and returns the new score.
func (s *Suspicion) Add(ip string, kind ThreatKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[ip]
	if ok && now.Sub(entry.lastAt) >= s.window {
		delete(s.entries, ip)
		ok = false
	}
	if !ok {
		if len(s.entries) >= s.maxEntries {
			s.evictBatch(now)
		}
		entry = &suspect{firstAt: now, kinds: map[ThreatKind]int{}}
		s.entries[ip] = entry
	}

	entry.score += ThreatScores[kind]
	entry.kinds[kind]++
	entry.lastAt = now

	return entry.score
}

func (s *Suspicion) Score(ip string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ip]
	if !ok || s.now().Sub(entry.lastAt) >= s.window {
		return 0
	}
	return entry.score
}

func (s *Suspicion) Reset(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, ip)
}

// Top returns up to n live suspects, highest score first.
func (s *Suspicion) Top(n int) []SuspectStat {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	res := make([]SuspectStat, 0, len(s.entries))
	for ip, e := range s.entries {
		if now.Sub(e.lastAt) >= s.window {
			continue
		}
		kinds := make(map[ThreatKind]int, len(e.kinds))
		for k, v := range e.kinds {
			kinds[k] = v
		}
		res = append(res, SuspectStat{Ip: ip, Score: e.score, FirstAt: e.firstAt, LastAt: e.lastAt, Kinds: kinds})
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Score == res[j].Score {
			return res[i].Ip < res[j].Ip
		}
		return res[i].Score > res[j].Score
	})

	if n > 0 && len(res) > n {
		res = res[:n]
	}
	return res
}

func (s *Suspicion) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for ip, e := range s.entries {
		if now.Sub(e.lastAt) >= s.window {
			delete(s.entries, ip)
			n++
		}
	}
	return n
}

// evictBatch runs when the table is full. It drops decayed entries, and if that frees
// nothing it drops the lowest-scored tenth in one pass, so a flood of new IPs pays for a
// scan once per maxEntries/10 inserts rather than on every one.
func (s *Suspicion) evictBatch(now time.Time) {
	type candidate struct {
		ip     string
		score  int
		lastAt time.Time
	}

	candidates := make([]candidate, 0, len(s.entries))
	for ip, e := range s.entries {
		if now.Sub(e.lastAt) >= s.window {
			delete(s.entries, ip)
			continue
		}
		candidates = append(candidates, candidate{ip, e.score, e.lastAt})
	}
	if len(s.entries) < s.maxEntries {
		return
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score == candidates[j].score {
			return candidates[i].lastAt.Before(candidates[j].lastAt)
		}
		return candidates[i].score < candidates[j].score
	})

	n := max(1, s.maxEntries/10)
	for _, c := range candidates[:min(n, len(candidates))] {
		delete(s.entries, c.ip)
	}
}

func (s *Suspicion) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
