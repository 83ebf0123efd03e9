package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const DefaultCSPCapacity = 500

type CSPReport struct {
	DocumentUri        string    `json:"documentUri"`
	Referrer           string    `json:"referrer,omitempty"`
	ViolatedDirective  string    `json:"violatedDirective"`
	EffectiveDirective string    `json:"effectiveDirective,omitempty"`
	BlockedUri         string    `json:"blockedUri"`
	SourceFile         string    `json:"sourceFile,omitempty"`
	LineNumber         int       `json:"lineNumber,omitempty"`
	ColumnNumber       int       `json:"columnNumber,omitempty"`
	Disposition        string    `json:"disposition,omitempty"`
	UserAgent          string    `json:"userAgent,omitempty"`
	ReceivedAt         time.Time `json:"receivedAt"`
}

// legacy application/csp-report body
type cspReportEnvelope struct {
	Report *struct {
		DocumentUri        string `json:"document-uri"`
		Referrer           string `json:"referrer"`
		ViolatedDirective  string `json:"violated-directive"`
		EffectiveDirective string `json:"effective-directive"`
		BlockedUri         string `json:"blocked-uri"`
		SourceFile         string `json:"source-file"`
		LineNumber         int    `json:"line-number"`
		ColumnNumber       int    `json:"column-number"`
		Disposition        string `json:"disposition"`
	} `json:"csp-report"`
}

// Reporting API (application/reports+json) entry
type reportingApiEntry struct {
	Type      string `json:"type"`
	Url       string `json:"url"`
	UserAgent string `json:"user_agent"`
	Body      struct {
		DocumentUrl        string `json:"documentURL"`
		Referrer           string `json:"referrer"`
		EffectiveDirective string `json:"effectiveDirective"`
		BlockedUrl         string `json:"blockedURL"`
		SourceFile         string `json:"sourceFile"`
		LineNumber         int    `json:"lineNumber"`
		ColumnNumber       int    `json:"columnNumber"`
		Disposition        string `json:"disposition"`
	} `json:"body"`
}

var ErrInvalidCSPReport = errors.New("invalid csp report")

// ParseCSPReports accepts either report format. Reporting API batches may carry other
// report types, which are skipped.
func ParseCSPReports(data []byte) ([]CSPReport, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrInvalidCSPReport
	}

	if data[0] == '[' {
		var entries []reportingApiEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSPReport, err)
		}
		var res []CSPReport
		for _, e := range entries {
			if e.Type != "csp-violation" {
				continue
			}
			doc := e.Body.DocumentUrl
			if doc == "" {
				doc = e.Url
			}
			res = append(res, CSPReport{
				DocumentUri:        doc,
				Referrer:           e.Body.Referrer,
				ViolatedDirective:  e.Body.EffectiveDirective,
				EffectiveDirective: e.Body.EffectiveDirective,
				BlockedUri:         e.Body.BlockedUrl,
				SourceFile:         e.Body.SourceFile,
				LineNumber:         e.Body.LineNumber,
				ColumnNumber:       e.Body.ColumnNumber,
				Disposition:        e.Body.Disposition,
				UserAgent:          e.UserAgent,
			})
		}
		if len(res) == 0 {
			return nil, fmt.Errorf("%w: no csp-violation entries", ErrInvalidCSPReport)
		}
		return res, nil
	}

	var env cspReportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSPReport, err)
	}
	if env.Report == nil {
		return nil, fmt.Errorf("%w: missing csp-report", ErrInvalidCSPReport)
	}
	r := env.Report
	violated := r.ViolatedDirective
	if violated == "" {
		violated = r.EffectiveDirective
	}
	return []CSPReport{{
		DocumentUri:        r.DocumentUri,
		Referrer:           r.Referrer,
		ViolatedDirective:  violated,
		EffectiveDirective: r.EffectiveDirective,
		BlockedUri:         r.BlockedUri,
		SourceFile:         r.SourceFile,
		LineNumber:         r.LineNumber,
		ColumnNumber:       r.ColumnNumber,
		Disposition:        r.Disposition,
	}}, nil
}

type CSPLog struct {
	mu    sync.Mutex
	ring  *ring[CSPReport]
	total int64
	now   func() time.Time
}

func NewCSPLog(capacity int) *CSPLog {
	if capacity <= 0 {
		capacity = DefaultCSPCapacity
	}
	return &CSPLog{ring: newRing[CSPReport](capacity), now: time.Now}
}

func (l *CSPLog) Add(reports ...CSPReport) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range reports {
		if r.ReceivedAt.IsZero() {
			r.ReceivedAt = l.now()
		}
		l.ring.push(r)
		l.total++
	}
}

// Recent returns up to n reports, newest first.
func (l *CSPLog) Recent(n int) []CSPReport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.recent(n)
}

type CSPGroup struct {
	Directive  string    `json:"directive"`
	BlockedUri string    `json:"blockedUri"`
	Count      int       `json:"count"`
	LastSeen   time.Time `json:"lastSeen"`
}

type CSPSummary struct {
	TotalReceived int64      `json:"totalReceived"`
	Retained      int        `json:"retained"`
	Groups        []CSPGroup `json:"groups"`
}

// Summary groups the retained reports by directive and blocked uri, most frequent first.
func (l *CSPLog) Summary() CSPSummary {
	l.mu.Lock()
	items := l.ring.items()
	total := l.total
	l.mu.Unlock()

	byKey := map[string]*CSPGroup{}
	for _, r := range items {
		directive := strings.Fields(r.ViolatedDirective)
		name := r.ViolatedDirective
		if len(directive) > 0 {
			name = directive[0]
		}
		key := name + "\x00" + r.BlockedUri
		g, ok := byKey[key]
		if !ok {
			g = &CSPGroup{Directive: name, BlockedUri: r.BlockedUri}
			byKey[key] = g
		}
		g.Count++
		if r.ReceivedAt.After(g.LastSeen) {
			g.LastSeen = r.ReceivedAt
		}
	}

	groups := make([]CSPGroup, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		if groups[i].Directive != groups[j].Directive {
			return groups[i].Directive < groups[j].Directive
		}
		return groups[i].BlockedUri < groups[j].BlockedUri
	})

	return CSPSummary{TotalReceived: total, Retained: len(items), Groups: groups}
}
