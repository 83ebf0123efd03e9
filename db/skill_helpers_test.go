package db

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSkillsByCategory(t *testing.T) {
	setupTestDb(t)

	mustTx(t, func(tx *sqlx.Tx) error {
		for _, s := range []*Skill{
			{Name: "PyTorch", Category: "ai-ml", Level: 4},
			{Name: "LangChain", Category: "ai-ml", Level: 3},
			{Name: "Go", Category: "backend", Level: 5},
		} {
			if err := CreateSkill(s, tx); err != nil {
				return err
			}
		}
		return nil
	})

	aiml, err := ListSkills(t.Context(), "ai-ml")
	require.NoError(t, err)
	require.Len(t, aiml, 2)
	for _, s := range aiml {
		assert.Equal(t, "ai-ml", s.Category)
	}
	assert.Equal(t, "LangChain", aiml[0].Name, "name order within equal sort_order")

	upper, err := ListSkills(t.Context(), "AI-ML")
	require.NoError(t, err)
	assert.Len(t, upper, 2)

	all, err := ListSkills(t.Context(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	categories, err := ListSkillCategories(t.Context())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, &SkillCategory{Category: "ai-ml", Count: 2}, categories[0])
}

func TestSkillUpdateAndDelete(t *testing.T) {
	setupTestDb(t)

	skill := &Skill{Name: "Rust", Category: "systems", Level: 2}
	mustTx(t, func(tx *sqlx.Tx) error {
		return CreateSkill(skill, tx)
	})

	skill.Level = 3
	mustTx(t, func(tx *sqlx.Tx) error {
		return UpdateSkill(skill, tx)
	})

	got, err := GetSkill(skill.Id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Level)

	require.NoError(t, DeleteSkill(skill.Id))
	_, err = GetSkill(skill.Id)
	assert.ErrorIs(t, err, ErrNotFound)

	err = WithTx(t.Context(), "missing", func(tx *sqlx.Tx) error {
		return UpdateSkill(&Skill{Id: "missing", Name: "x", Category: "y"}, tx)
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
