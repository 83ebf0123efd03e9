package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageViewStats(t *testing.T) {
	setupTestDb(t)

	require.NoError(t, RecordPageView("home", "v1", ""))
	require.NoError(t, RecordPageView("home", "v1", "https://news.ycombinator.com"))
	require.NoError(t, RecordPageView("home", "v2", ""))
	require.NoError(t, RecordPageView("blog", "v3", ""))

	stats, err := GetPageViewStats("home")
	require.NoError(t, err)
	assert.Equal(t, &PageViewStats{Slug: "home", Views: 3, UniqueVisitors: 2}, stats)

	empty, err := GetPageViewStats("nothing")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Views)

	top, err := TopPages(1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "home", top[0].Slug)
}
