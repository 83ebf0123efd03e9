package setup

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolio-server/config"
	"portfolio-server/db"
	"portfolio-server/email"
	"portfolio-server/hooks"
	"portfolio-server/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMail struct {
	to, subject, text string
}

type mailRecorder struct {
	sent []recordedMail
}

func (m *mailRecorder) Send(msg email.Message) error {
	m.sent = append(m.sent, recordedMail{msg.To, msg.Subject, msg.Text})
	return nil
}

func testServices(t *testing.T) *Services {
	t.Helper()

	cfg := config.Default()
	cfg.Env = "test"
	cfg.SiteUrl = "https://ada.dev"
	cfg.Content.ProfilePath = t.TempDir() + "/profile.yaml"

	s, err := NewServices(context.Background(), cfg)
	require.NoError(t, err)

	t.Cleanup(hooks.Reset)
	return s
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestRecovererReturnsJson500(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRequestLoggerKeepsStatus(t *testing.T) {
	h := RequestLogger(func(r *http.Request) string { return "1.2.3.4" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestHooksSendEmail(t *testing.T) {
	s := testServices(t)
	mail := &mailRecorder{}
	s.Mailer = email.NewWithTransport(mail, "owner@ada.dev", "ada.dev")
	s.RegisterHooks()

	apiErr := hooks.ExecHook(hooks.ContactSubmitted, hooks.HookParams{Contact: &db.ContactSubmission{Id: "c1", Name: "Grace", Email: "g@example.com", Message: "hi"}})
	require.Nil(t, apiErr)

	apiErr = hooks.ExecHook(hooks.NewsletterSubscribed, hooks.HookParams{NewsletterSubscribedParams: &hooks.NewsletterSubscribedParams{
		Subscriber:   &db.NewsletterSubscriber{Email: "reader@example.com"},
		ConfirmToken: "tok en",
	}})
	require.Nil(t, apiErr)

	require.Len(t, mail.sent, 2)
	assert.Equal(t, "owner@ada.dev", mail.sent[0].to)
	assert.Equal(t, "reader@example.com", mail.sent[1].to)
	assert.Contains(t, mail.sent[1].text, "https://ada.dev/api/newsletter/confirm?token=tok+en")
}

func TestProductionErrorsAlertOwner(t *testing.T) {
	s := testServices(t)
	mail := &mailRecorder{}
	s.Mailer = email.NewWithTransport(mail, "owner@ada.dev", "ada.dev")
	s.Config.Env = "production"
	s.RegisterHooks()
	t.Cleanup(func() { notify.RegisterAlerter(nil) })

	notify.NotifyErr(notify.SeverityInfo, "profile watcher stopped")
	assert.Empty(t, mail.sent)

	notify.NotifyErr(notify.SeverityError, "panic in GET /api/summary")
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "owner@ada.dev", mail.sent[0].to)
	assert.Equal(t, "[ada.dev] server error", mail.sent[0].subject)
	assert.Contains(t, mail.sent[0].text, "panic in GET /api/summary")
}

func TestHealthFailsWhileDraining(t *testing.T) {
	s := testServices(t)
	s.RegisterHooks()

	h, err := s.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	s.draining.Store(true)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlerAppliesHeadersAndCompression(t *testing.T) {
	s := testServices(t)

	h, err := s.Handler()
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "report-uri /api/csp-report")

	body := rec.Body
	if rec.Header().Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		data, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Portfolio Owner")
		return
	}
	assert.Contains(t, body.String(), "Portfolio Owner")
}

func TestHandlerServesFallbacksWithoutDatabase(t *testing.T) {
	s := testServices(t)

	h, err := s.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/mobile/projects", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-Fallback"))
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
