package telemetry

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type Uptime struct {
	startedAt time.Time
	version   string
	now       func() time.Time
}

func NewUptime(version string) *Uptime {
	return &Uptime{startedAt: time.Now(), version: version, now: time.Now}
}

type StatusReport struct {
	Status        string    `json:"status"` // ok, degraded
	StartedAt     time.Time `json:"startedAt"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
	UptimeHuman   string    `json:"uptimeHuman"`
	Version       string    `json:"version"`
	Host          string    `json:"host,omitempty"`
	Database      DbStatus  `json:"database"`
}

type DbStatus struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (u *Uptime) StartedAt() time.Time {
	return u.startedAt
}

func (u *Uptime) Duration() time.Duration {
	return u.now().Sub(u.startedAt)
}

// Human renders the uptime as e.g. "3 hours". Under a second reads "now".
func (u *Uptime) Human() string {
	return strings.TrimSpace(humanize.RelTime(u.startedAt, u.now(), "", ""))
}

// Status pings the database with ping (nil skips the check) and reports degraded on failure.
func (u *Uptime) Status(ctx context.Context, ping func(context.Context) error) StatusReport {
	report := StatusReport{
		Status:        "ok",
		StartedAt:     u.startedAt,
		UptimeSeconds: int64(u.Duration().Seconds()),
		UptimeHuman:   u.Human(),
		Version:       u.version,
		Database:      DbStatus{Ok: true},
	}

	if ping != nil {
		if err := ping(ctx); err != nil {
			report.Status = "degraded"
			report.Database = DbStatus{Ok: false, Error: err.Error()}
		}
	}

	return report
}

const badgeTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="20" role="img" aria-label="%s: %s">` +
	`<title>%s: %s</title>` +
	`<linearGradient id="s" x2="0" y2="100%%"><stop offset="0" stop-color="#bbb" stop-opacity=".1"/><stop offset="1" stop-opacity=".1"/></linearGradient>` +
	`<clipPath id="r"><rect width="%d" height="20" rx="3" fill="#fff"/></clipPath>` +
	`<g clip-path="url(#r)"><rect width="%d" height="20" fill="#555"/><rect x="%d" width="%d" height="20" fill="%s"/><rect width="%d" height="20" fill="url(#s)"/></g>` +
	`<g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" font-size="11">` +
	`<text x="%d" y="14">%s</text><text x="%d" y="14">%s</text></g></svg>`

const (
	ColorGreen  = "#4c1"
	ColorOrange = "#fe7d37"
	ColorRed    = "#e05d44"
)

// Badge renders a shields-style flat badge. Widths are estimated from character count.
func Badge(label, message, color string) []byte {
	label = html.EscapeString(label)
	message = html.EscapeString(message)

	lw := textWidth(label)
	mw := textWidth(message)
	total := lw + mw

	return []byte(fmt.Sprintf(badgeTemplate,
		total, label, message,
		label, message,
		total,
		lw, lw, mw, color, total,
		lw/2, label, lw+mw/2, message,
	))
}

func textWidth(s string) int {
	return len([]rune(s))*7 + 10
}

// UptimeBadge shows "up 3 hours" in green, or the degraded state in orange.
func (u *Uptime) UptimeBadge(report StatusReport) []byte {
	if report.Status != "ok" {
		return Badge("uptime", "degraded", ColorOrange)
	}
	return Badge("uptime", "up "+report.UptimeHuman, ColorGreen)
}
