package security

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"portfolio-server/config"
	"portfolio-server/host"

	"go.uber.org/zap"
)

type Options struct {
	RPS        float64
	Burst      int
	WriteRPS   float64
	WriteBurst int

	AutoBlockThreshold int
	AutoBlockDuration  time.Duration
	SuspicionWindow    time.Duration
	MaxTrackedIPs      int

	TrustedProxies []string

	// AllowPaths skip threat scoring and rate limiting. Blocked IPs are still refused.
	AllowPaths []string
	// WritePaths are rate limited with the write bucket for non-GET requests.
	// Entries are matched as prefixes after stripping the mobile mount.
	WritePaths []string

	SweepInterval time.Duration
	Now           func() time.Time
}

var DefaultWritePaths = []string{
	"/api/contact",
	"/api/comments",
	"/api/guestbook",
	"/api/newsletter",
	"/api/chat",
	"/api/admin/sign_in",
}

func OptionsFromConfig(cfg config.SecurityConfig) Options {
	return Options{
		RPS:                cfg.RateLimitRPS,
		Burst:              cfg.RateLimitBurst,
		WriteRPS:           cfg.WriteRPS,
		WriteBurst:         cfg.WriteBurst,
		AutoBlockThreshold: cfg.AutoBlockThreshold,
		AutoBlockDuration:  cfg.AutoBlockDurationValue(),
		MaxTrackedIPs:      cfg.MaxTrackedIPs,
		TrustedProxies:     cfg.TrustedProxies,
	}
}

// Guard ties the limiter, block list, detector and suspicion scores together. All of its
// state is process-local and resets on restart.
type Guard struct {
	limiter   *RateLimiter
	blocklist *Blocklist
	detector  *Detector
	suspicion *Suspicion
	proxies   host.Proxies

	autoBlockThreshold int
	autoBlockDuration  time.Duration
	allowPaths         map[string]bool
	writePaths         []string
	sweepInterval      time.Duration
	now                func() time.Time
	startedAt          time.Time

	totalRequests   atomic.Int64
	blockedRequests atomic.Int64
	rateLimited     atomic.Int64
	autoBlocks      atomic.Int64

	threatsMu sync.Mutex
	threats   map[ThreatKind]int64
}

func NewGuard(opts Options) (*Guard, error) {
	proxies, err := host.ParseProxies(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.AutoBlockThreshold <= 0 {
		opts.AutoBlockThreshold = 20
	}
	if opts.AutoBlockDuration <= 0 {
		opts.AutoBlockDuration = time.Hour
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.AllowPaths == nil {
		opts.AllowPaths = []string{"/health"}
	}
	if opts.WritePaths == nil {
		opts.WritePaths = DefaultWritePaths
	}

	allow := make(map[string]bool, len(opts.AllowPaths))
	for _, p := range opts.AllowPaths {
		allow[p] = true
	}

	return &Guard{
		limiter:            NewRateLimiter(opts.RPS, opts.Burst, opts.WriteRPS, opts.WriteBurst, opts.MaxTrackedIPs, now),
		blocklist:          NewBlocklist(now),
		detector:           NewDetector(),
		suspicion:          NewSuspicion(opts.SuspicionWindow, opts.MaxTrackedIPs, now),
		proxies:            proxies,
		autoBlockThreshold: opts.AutoBlockThreshold,
		autoBlockDuration:  opts.AutoBlockDuration,
		allowPaths:         allow,
		writePaths:         opts.WritePaths,
		sweepInterval:      opts.SweepInterval,
		now:                now,
		startedAt:          now(),
		threats:            make(map[ThreatKind]int64),
	}, nil
}

// Run evicts expired blocks, idle limiters and stale suspicion scores until ctx is done.
func (g *Guard) Run(ctx context.Context) {
	ticker := time.NewTicker(g.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

func (g *Guard) sweep() {
	limiters := g.limiter.Sweep()
	blocks := g.blocklist.Sweep()
	suspects := g.suspicion.Sweep()
	if limiters+blocks+suspects > 0 {
		zap.L().Debug("security sweep",
			zap.Int("limiters", limiters),
			zap.Int("blocks", blocks),
			zap.Int("suspects", suspects),
		)
	}
}

func (g *Guard) Block(ip, reason string, ttl time.Duration) BlockEntry {
	entry := g.blocklist.Block(ip, reason, ttl, false)
	zap.L().Info("ip blocked", zap.String("ip", ip), zap.String("reason", reason), zap.Duration("ttl", ttl))
	return entry
}

// Unblock also clears the suspicion score so the IP isn't re-blocked on its next request.
func (g *Guard) Unblock(ip string) bool {
	g.suspicion.Reset(ip)
	ok := g.blocklist.Unblock(ip)
	if ok {
		zap.L().Info("ip unblocked", zap.String("ip", ip))
	}
	return ok
}

func (g *Guard) IsBlocked(ip string) bool {
	_, ok := g.blocklist.IsBlocked(ip)
	return ok
}

func (g *Guard) ClientIP(r *http.Request) string {
	return host.ClientIP(r, g.proxies)
}

// record scores a threat and auto-blocks once the threshold is crossed.
func (g *Guard) record(ip string, kind ThreatKind) (blocked bool) {
	if kind != ThreatRateLimited {
		g.threatsMu.Lock()
		g.threats[kind]++
		g.threatsMu.Unlock()
	}

	score := g.suspicion.Add(ip, kind)
	if score < g.autoBlockThreshold {
		return false
	}

	if _, already := g.blocklist.IsBlocked(ip); already {
		return true
	}

	g.blocklist.Block(ip, fmt.Sprintf("auto: suspicion score %d (%s)", score, kind), g.autoBlockDuration, true)
	g.autoBlocks.Add(1)
	zap.L().Warn("ip auto-blocked",
		zap.String("ip", ip),
		zap.Int("score", score),
		zap.String("lastThreat", string(kind)),
		zap.Duration("duration", g.autoBlockDuration),
	)
	return true
}

func (g *Guard) classify(method, path string) Class {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return ClassRead
	}
	if strings.HasPrefix(path, "/api/mobile/") {
		path = "/api/" + strings.TrimPrefix(path, "/api/mobile/")
	}
	for _, p := range g.writePaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return ClassWrite
		}
	}
	return ClassRead
}

type Stats struct {
	StartedAt       time.Time            `json:"startedAt"`
	TotalRequests   int64                `json:"totalRequests"`
	BlockedRequests int64                `json:"blockedRequests"`
	RateLimited     int64                `json:"rateLimited"`
	AutoBlocks      int64                `json:"autoBlocks"`
	Threats         map[ThreatKind]int64 `json:"threats"`
	BlockedIps      []BlockEntry         `json:"blockedIps"`
	TopSuspicious   []SuspectStat        `json:"topSuspicious"`
	TrackedIps      int                  `json:"trackedIps"`
}

func (g *Guard) Stats() Stats {
	g.threatsMu.Lock()
	threats := make(map[ThreatKind]int64, len(g.threats))
	for k, v := range g.threats {
		threats[k] = v
	}
	g.threatsMu.Unlock()

	return Stats{
		StartedAt:       g.startedAt,
		TotalRequests:   g.totalRequests.Load(),
		BlockedRequests: g.blockedRequests.Load(),
		RateLimited:     g.rateLimited.Load(),
		AutoBlocks:      g.autoBlocks.Load(),
		Threats:         threats,
		BlockedIps:      g.blocklist.List(),
		TopSuspicious:   g.suspicion.Top(10),
		TrackedIps:      g.limiter.Len(),
	}
}
