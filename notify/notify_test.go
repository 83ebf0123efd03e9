package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func resetAlerts(t *testing.T, burst int) {
	t.Helper()
	limiter = rate.NewLimiter(rate.Every(time.Hour), burst)
	t.Cleanup(func() {
		RegisterAlerter(nil)
		limiter = rate.NewLimiter(rate.Every(time.Minute), 5)
	})
}

func TestNotifyErrRoutesBySeverity(t *testing.T) {
	resetAlerts(t, 5)

	// nothing registered
	NotifyErr(SeverityError, "ignored")

	var got []string
	RegisterAlerter(func(summary string) { got = append(got, summary) })

	NotifyErr(SeverityInfo, "watcher", "stopped")
	assert.Empty(t, got, "info stays in the log")

	NotifyErr(SeverityError, "boom", 42)
	require.Len(t, got, 1)
	assert.Equal(t, "boom 42", got[0])
}

func TestNotifyErrLimitsAlerts(t *testing.T) {
	resetAlerts(t, 2)

	count := 0
	RegisterAlerter(func(string) { count++ })
	for i := 0; i < 10; i++ {
		NotifyErr(SeverityError, "panic", i)
	}
	assert.Equal(t, 2, count)
}

func TestNotifyErrSurvivesPanickingAlerter(t *testing.T) {
	resetAlerts(t, 5)

	RegisterAlerter(func(string) { panic("mail down") })
	assert.NotPanics(t, func() { NotifyErr(SeverityError, "x") })
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "error", SeverityError.String())
}
