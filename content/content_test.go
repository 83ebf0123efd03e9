package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const profileYaml = `
name: Ada Example
headline: Backend Engineer
location: Lisbon
summary: |
  I build **reliable** systems.
social:
  - label: GitHub
    url: https://github.com/ada
interests:
  - name: Distributed systems
  - name: Climbing
`

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile([]byte(profileYaml))
	require.NoError(t, err)

	assert.Equal(t, "Ada Example", p.Name)
	assert.Len(t, p.Interests, 2)
	assert.Contains(t, p.SummaryHtml, "<strong>reliable</strong>")
}

func TestParseProfileValidation(t *testing.T) {
	_, err := ParseProfile([]byte("headline: nobody"))
	assert.ErrorContains(t, err, "name is required")

	_, err = ParseProfile([]byte("name: x\nsocial:\n  - label: bad\n    url: javascript:alert(1)"))
	assert.ErrorContains(t, err, "social[0]")
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := RenderMarkdown("# Title\n\n<script>alert(1)</script>\n\n[link](https://example.com)")

	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.NotContains(t, out, "<script")
	assert.Contains(t, out, `rel="nofollow noopener"`)
	assert.Empty(t, RenderMarkdown(""))
}

func TestRenderComment(t *testing.T) {
	out := RenderComment("## Hi\n\n*nice* [site](https://example.com) ![x](https://example.com/a.png)\n\n<iframe src=evil></iframe>")

	assert.Contains(t, out, "<em>nice</em>")
	assert.Contains(t, out, `rel="nofollow noopener"`)
	assert.NotContains(t, out, "<h2")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "iframe")
	assert.Empty(t, RenderComment(""))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText("<b onclick=x>hello</b><script>evil()</script>"))
	assert.Equal(t, "a &amp; b", SanitizeText("a & b"))
}

func TestStoreReloadKeepsLastGoodProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(profileYaml), 0644))

	store := NewStore(path)
	assert.Equal(t, "Portfolio Owner", store.Profile().Name)

	var notified string
	store.OnChange(func(p *Profile) { notified = p.Name })

	require.NoError(t, store.Reload())
	assert.Equal(t, "Ada Example", store.Profile().Name)
	assert.Equal(t, "Ada Example", notified)
	assert.False(t, store.LoadedAt().IsZero())

	require.NoError(t, os.WriteFile(path, []byte("name: [broken"), 0644))
	assert.Error(t, store.Reload())
	assert.Equal(t, "Ada Example", store.Profile().Name)
	assert.Error(t, store.LastError())
}

func TestStoreWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(profileYaml), 0644))

	store := NewStore(path)
	require.NoError(t, store.Reload())

	changed := make(chan string, 4)
	store.OnChange(func(p *Profile) {
		select {
		case changed <- p.Name:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.watch(ctx, 10*time.Millisecond) }()

	// give the watcher a moment to register the directory
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("name: Grace Example\n"), 0644))

	select {
	case name := <-changed:
		assert.Equal(t, "Grace Example", name)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload the profile")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed([]byte(`
projects:
  - slug: site
    title: Site
    tech: [Go, Postgres]
    draft: true
skills:
  - name: Go
    category: backend
experience:
  - company: Acme
    role: Engineer
    start: 2021-02
    end: present
    highlights: [one, two]
certifications:
  - name: CKA
    issuer: CNCF
    issued: 2023-05-01
    expires: 2026-05-01
`))
	require.NoError(t, err)

	require.Len(t, seed.Projects, 1)
	assert.False(t, seed.Projects[0].Published)
	assert.Equal(t, []string{"Go", "Postgres"}, seed.Projects[0].Tech)
	assert.Equal(t, 3, seed.Skills[0].Level)
	assert.Nil(t, seed.Experiences[0].EndDate)
	assert.Equal(t, time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), seed.Experiences[0].StartDate)
	require.NotNil(t, seed.Certifications[0].ExpiresAt)
}

func TestParseSeedRejectsBadInput(t *testing.T) {
	_, err := ParseSeed([]byte("projects:\n  - title: no slug"))
	assert.ErrorContains(t, err, "projects[0]")

	_, err = ParseSeed([]byte("experience:\n  - company: A\n    start: 2022-01\n    end: 2021-01"))
	assert.ErrorContains(t, err, "before start")

	_, err = ParseSeed([]byte("education:\n  - institution: U\n    start: last year"))
	assert.ErrorContains(t, err, "invalid date")
}
