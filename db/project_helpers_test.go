package db

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectCrud(t *testing.T) {
	setupTestDb(t)

	project := &Project{
		Slug:      "queue-service",
		Title:     "Queue Service",
		Summary:   "A durable queue",
		Category:  "backend",
		Tech:      []string{"Go", " Postgres "},
		Featured:  true,
		Published: true,
	}

	mustTx(t, func(tx *sqlx.Tx) error {
		return CreateProject(project, tx)
	})
	require.NotEmpty(t, project.Id)

	got, err := GetProject(project.Id)
	require.NoError(t, err)
	assert.Equal(t, "Queue Service", got.Title)
	assert.Equal(t, []string{"Go", "Postgres"}, got.Tech)
	assert.True(t, got.Featured)

	got.Title = "Queue Service v2"
	got.Tech = []string{"Go"}
	mustTx(t, func(tx *sqlx.Tx) error {
		return UpdateProject(got, tx)
	})

	bySlug, err := GetProjectBySlug("queue-service")
	require.NoError(t, err)
	assert.Equal(t, "Queue Service v2", bySlug.Title)
	assert.Equal(t, []string{"Go"}, bySlug.Tech)

	require.NoError(t, DeleteProject(project.Id))
	assert.ErrorIs(t, DeleteProject(project.Id), ErrNotFound)

	_, err = GetProject(project.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProjectDuplicateSlug(t *testing.T) {
	setupTestDb(t)

	mustTx(t, func(tx *sqlx.Tx) error {
		return CreateProject(&Project{Slug: "dup", Title: "One"}, tx)
	})

	err := WithTx(t.Context(), "dup", func(tx *sqlx.Tx) error {
		return CreateProject(&Project{Slug: "dup", Title: "Two"}, tx)
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestListProjectsFilters(t *testing.T) {
	setupTestDb(t)

	mustTx(t, func(tx *sqlx.Tx) error {
		for _, p := range []*Project{
			{Slug: "a", Title: "A", Category: "AI-ML", Published: true, Featured: true, SortOrder: 2},
			{Slug: "b", Title: "B", Category: "web", Published: true, SortOrder: 1},
			{Slug: "c", Title: "C", Category: "ai-ml", Published: false},
		} {
			if err := CreateProject(p, tx); err != nil {
				return err
			}
		}
		return nil
	})

	all, err := ListProjects(t.Context(), ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	published, err := ListProjects(t.Context(), ProjectFilter{PublishedOnly: true})
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, "b", published[0].Slug, "sort_order ascending")

	aiml, err := ListProjects(t.Context(), ProjectFilter{Category: "ai-ml", PublishedOnly: true})
	require.NoError(t, err)
	require.Len(t, aiml, 1)
	assert.Equal(t, "a", aiml[0].Slug)

	featured, err := ListProjects(t.Context(), ProjectFilter{FeaturedOnly: true, Limit: 5})
	require.NoError(t, err)
	require.Len(t, featured, 1)

	cancelled, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = ListProjects(cancelled, ProjectFilter{})
	assert.ErrorContains(t, err, "context canceled")

	count, err := CountProjects(true)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	categories, err := ListProjectCategories()
	require.NoError(t, err)
	assert.Equal(t, []string{"AI-ML", "web"}, categories)
}
