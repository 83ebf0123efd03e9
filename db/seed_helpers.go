package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Seed is a full content snapshot, usually loaded from a yaml file by the cli.
type Seed struct {
	Projects       []*Project
	Skills         []*Skill
	Experiences    []*Experience
	Educations     []*Education
	Certifications []*Certification
}

type SeedResult struct {
	ProjectsCreated int
	ProjectsUpdated int
	SkillsCreated   int
	SkillsUpdated   int
	ResumeEntries   int
}

// ApplySeed upserts projects (by slug) and skills (by name+category) and replaces the
// resume tables wholesale, all in one transaction.
func ApplySeed(ctx context.Context, seed *Seed) (*SeedResult, error) {
	res := &SeedResult{}

	err := WithTx(ctx, "apply seed", func(tx *sqlx.Tx) error {
		for _, p := range seed.Projects {
			var existingId string
			err := tx.Get(&existingId, tx.Rebind("SELECT id FROM projects WHERE slug = ?"), p.Slug)
			switch {
			case err == sql.ErrNoRows:
				if err := CreateProject(p, tx); err != nil {
					return err
				}
				res.ProjectsCreated++
			case err != nil:
				return fmt.Errorf("error looking up project %q: %v", p.Slug, err)
			default:
				p.Id = existingId
				if err := UpdateProject(p, tx); err != nil {
					return err
				}
				res.ProjectsUpdated++
			}
		}

		for _, s := range seed.Skills {
			var existingId string
			err := tx.Get(&existingId, tx.Rebind("SELECT id FROM skills WHERE name = ? AND category = ?"), s.Name, s.Category)
			switch {
			case err == sql.ErrNoRows:
				if err := CreateSkill(s, tx); err != nil {
					return err
				}
				res.SkillsCreated++
			case err != nil:
				return fmt.Errorf("error looking up skill %q: %v", s.Name, err)
			default:
				s.Id = existingId
				if err := UpdateSkill(s, tx); err != nil {
					return err
				}
				res.SkillsUpdated++
			}
		}

		for _, table := range []string{"experiences", "educations", "certifications"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("error clearing %s: %v", table, err)
			}
		}

		for _, e := range seed.Experiences {
			if err := CreateExperience(e, tx); err != nil {
				return err
			}
			res.ResumeEntries++
		}
		for _, e := range seed.Educations {
			if err := CreateEducation(e, tx); err != nil {
				return err
			}
			res.ResumeEntries++
		}
		for _, c := range seed.Certifications {
			if err := CreateCertification(c, tx); err != nil {
				return err
			}
			res.ResumeEntries++
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return res, nil
}
