package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingOverwritesOldest(t *testing.T) {
	r := newRing[int](3)
	for i := 1; i <= 5; i++ {
		r.push(i)
	}
	assert.Equal(t, 3, r.len())
	assert.Equal(t, []int{3, 4, 5}, r.items())
	assert.Equal(t, []int{5, 4}, r.recent(2))
	assert.Equal(t, []int{5, 4, 3}, r.recent(0))
}

func TestParseCSPReportsLegacy(t *testing.T) {
	reports, err := ParseCSPReports([]byte(`{"csp-report":{
		"document-uri":"https://example.com/",
		"violated-directive":"script-src 'self'",
		"blocked-uri":"https://evil.example/x.js",
		"line-number":12}}`))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "https://evil.example/x.js", reports[0].BlockedUri)
	assert.Equal(t, 12, reports[0].LineNumber)
}

func TestParseCSPReportsReportingApi(t *testing.T) {
	reports, err := ParseCSPReports([]byte(`[
		{"type":"deprecation","body":{}},
		{"type":"csp-violation","url":"https://example.com/a","user_agent":"UA",
		 "body":{"effectiveDirective":"img-src","blockedURL":"https://cdn.example/i.png"}}
	]`))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "img-src", reports[0].ViolatedDirective)
	assert.Equal(t, "https://example.com/a", reports[0].DocumentUri)
	assert.Equal(t, "UA", reports[0].UserAgent)

	for _, bad := range []string{``, `{}`, `not json`, `[{"type":"deprecation"}]`} {
		_, err := ParseCSPReports([]byte(bad))
		assert.True(t, errors.Is(err, ErrInvalidCSPReport), "input %q", bad)
	}
}

func TestCSPLogBoundedAndSummarized(t *testing.T) {
	l := NewCSPLog(3)
	for i := 0; i < 4; i++ {
		l.Add(CSPReport{ViolatedDirective: "script-src 'self'", BlockedUri: "inline"})
	}
	l.Add(CSPReport{ViolatedDirective: "img-src", BlockedUri: "https://x"})

	assert.Len(t, l.Recent(10), 3)
	assert.Equal(t, "img-src", l.Recent(1)[0].ViolatedDirective)

	summary := l.Summary()
	assert.Equal(t, int64(5), summary.TotalReceived)
	assert.Equal(t, 3, summary.Retained)
	require.Len(t, summary.Groups, 2)
	assert.Equal(t, CSPGroup{Directive: "script-src", BlockedUri: "inline", Count: 2, LastSeen: summary.Groups[0].LastSeen}, summary.Groups[0])
}

func TestRateVital(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  Rating
	}{
		{"LCP", 2500, RatingGood},
		{"LCP", 2501, RatingNeedsImprovement},
		{"LCP", 4001, RatingPoor},
		{"CLS", 0.05, RatingGood},
		{"CLS", 0.3, RatingPoor},
		{"INP", 300, RatingNeedsImprovement},
		{"TTFB", 100, RatingGood},
		{"FCP", 3500, RatingPoor},
		{"FID", 150, RatingNeedsImprovement},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s=%v", tt.name, tt.value), func(t *testing.T) {
			got, ok := RateVital(tt.name, tt.value)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := RateVital("XYZ", 1)
	assert.False(t, ok)
}

func TestVitalsAddValidates(t *testing.T) {
	v := NewVitals(10)

	sample, err := v.Add("lcp", 1200, "/")
	require.NoError(t, err)
	assert.Equal(t, "LCP", sample.Name)
	assert.Equal(t, RatingGood, sample.Rating)

	_, err = v.Add("BOGUS", 1, "/")
	assert.ErrorIs(t, err, ErrInvalidVital)
	_, err = v.Add("CLS", -0.1, "/")
	assert.ErrorIs(t, err, ErrInvalidVital)

	assert.Len(t, v.Recent(0), 1)
}

func TestVitalsSummary(t *testing.T) {
	v := NewVitals(100)
	for i := 1; i <= 20; i++ {
		_, err := v.Add("LCP", float64(i*250), "/")
		require.NoError(t, err)
	}

	summary := v.Summary()
	require.Contains(t, summary, "LCP")
	lcp := summary["LCP"]
	assert.Equal(t, 20, lcp.Count)
	assert.Equal(t, 2500.0, lcp.P50)
	assert.Equal(t, 3750.0, lcp.P75)
	assert.Equal(t, 4750.0, lcp.P95)
	assert.Equal(t, 10, lcp.Good)
	assert.Equal(t, 6, lcp.NeedsImprovement)
	assert.Equal(t, 4, lcp.Poor)
	assert.Equal(t, RatingNeedsImprovement, lcp.Rating)
	assert.NotContains(t, summary, "CLS")
}

func TestUptimeStatus(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	u := &Uptime{startedAt: start, version: "1.2.3", now: func() time.Time { return start.Add(3 * time.Hour) }}

	report := u.Status(context.Background(), func(context.Context) error { return nil })
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, int64(3*60*60), report.UptimeSeconds)
	assert.Equal(t, "3 hours", report.UptimeHuman)
	assert.True(t, report.Database.Ok)

	report = u.Status(context.Background(), func(context.Context) error { return errors.New("connection refused") })
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "connection refused", report.Database.Error)

	badge := string(u.UptimeBadge(report))
	assert.Contains(t, badge, "degraded")
	assert.Contains(t, badge, ColorOrange)
}

func TestBadgeEscapes(t *testing.T) {
	svg := string(Badge("a<b", "ok", ColorGreen))
	assert.Contains(t, svg, "a&lt;b")
	assert.Contains(t, svg, `<svg xmlns="http://www.w3.org/2000/svg"`)
	assert.NotContains(t, svg, "%!")
}
