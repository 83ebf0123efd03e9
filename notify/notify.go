// Package notify reports failures that no request is waiting on: recovered handler
// panics, a stopped profile watcher, a failing cleanup job.
package notify

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s >= SeverityError {
		return "error"
	}
	return "info"
}

// Alerter receives error-level reports. Production registers one that emails the owner.
type Alerter func(summary string)

var (
	mu      sync.Mutex
	alerter Alerter
	// a panic storm sends a handful of alerts, then one a minute
	limiter = rate.NewLimiter(rate.Every(time.Minute), 5)
)

func RegisterAlerter(fn Alerter) {
	mu.Lock()
	alerter = fn
	mu.Unlock()
}

// NotifyErr logs every report. Error-level reports are also passed to the alerter, subject
// to the alert rate limit.
func NotifyErr(severity Severity, data ...interface{}) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("panic in NotifyErr", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		}
	}()

	summary := strings.TrimSpace(fmt.Sprintln(data...))

	if severity < SeverityError {
		zap.L().Info("notify", zap.Stringer("severity", severity), zap.String("summary", summary))
		return
	}
	zap.L().Error("notify", zap.Stringer("severity", severity), zap.String("summary", summary))

	mu.Lock()
	fn := alerter
	mu.Unlock()

	if fn == nil {
		return
	}
	if !limiter.Allow() {
		zap.L().Warn("alert suppressed by rate limit")
		return
	}
	fn(summary)
}
