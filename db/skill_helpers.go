package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ListSkills returns every skill, or only the given category when it is non-empty.
// Category matching is case-insensitive so "AI-ML" and "ai-ml" are the same bucket.
func ListSkills(ctx context.Context, category string) ([]*Skill, error) {
	skills := []*Skill{}

	var err error
	if category == "" {
		err = Conn.SelectContext(ctx, &skills, "SELECT * FROM skills ORDER BY category ASC, sort_order ASC, name ASC")
	} else {
		err = Conn.SelectContext(ctx, &skills, Conn.Rebind("SELECT * FROM skills WHERE LOWER(category) = LOWER(?) ORDER BY sort_order ASC, name ASC"), category)
	}

	if err != nil {
		return nil, fmt.Errorf("error listing skills: %v", err)
	}

	return skills, nil
}

func ListSkillCategories(ctx context.Context) ([]*SkillCategory, error) {
	categories := []*SkillCategory{}
	err := Conn.SelectContext(ctx, &categories, "SELECT category, COUNT(*) AS count FROM skills GROUP BY category ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("error listing skill categories: %v", err)
	}
	return categories, nil
}

func GetSkill(id string) (*Skill, error) {
	var skill Skill
	err := Conn.Get(&skill, Conn.Rebind("SELECT * FROM skills WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("error getting skill: %w", notFoundIfNoRows(err, "skill"))
	}
	return &skill, nil
}

func CreateSkill(skill *Skill, tx *sqlx.Tx) error {
	skill.Id = uuid.New().String()
	skill.CreatedAt = now()
	skill.UpdatedAt = skill.CreatedAt

	_, err := tx.NamedExec(`INSERT INTO skills (id, name, category, level, years, icon, sort_order, created_at, updated_at)
	VALUES (:id, :name, :category, :level, :years, :icon, :sort_order, :created_at, :updated_at)`, skill)

	if err != nil {
		if IsNonUniqueErr(err) {
			return fmt.Errorf("skill %q in %q: %w", skill.Name, skill.Category, ErrConflict)
		}
		return fmt.Errorf("error creating skill: %v", err)
	}

	return nil
}

func UpdateSkill(skill *Skill, tx *sqlx.Tx) error {
	skill.UpdatedAt = now()

	res, err := tx.NamedExec(`UPDATE skills SET name = :name, category = :category, level = :level, years = :years,
	icon = :icon, sort_order = :sort_order, updated_at = :updated_at WHERE id = :id`, skill)

	if err != nil {
		if IsNonUniqueErr(err) {
			return fmt.Errorf("skill %q in %q: %w", skill.Name, skill.Category, ErrConflict)
		}
		return fmt.Errorf("error updating skill: %v", err)
	}

	return checkAffected(res, "skill")
}

func DeleteSkill(id string) error {
	res, err := Conn.Exec(Conn.Rebind("DELETE FROM skills WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("error deleting skill: %v", err)
	}
	return checkAffected(res, "skill")
}
