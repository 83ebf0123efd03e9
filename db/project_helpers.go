package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ProjectFilter struct {
	Category      string
	FeaturedOnly  bool
	PublishedOnly bool
	Limit         int
}

func ListProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	var conds []string
	var args []interface{}

	if filter.Category != "" {
		conds = append(conds, "LOWER(category) = LOWER(?)")
		args = append(args, filter.Category)
	}
	if filter.FeaturedOnly {
		conds = append(conds, "featured = ?")
		args = append(args, true)
	}
	if filter.PublishedOnly {
		conds = append(conds, "published = ?")
		args = append(args, true)
	}

	query := "SELECT * FROM projects"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY sort_order ASC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	projects := []*Project{}
	err := Conn.SelectContext(ctx, &projects, Conn.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error listing projects: %v", err)
	}

	for _, p := range projects {
		p.hydrate()
	}

	return projects, nil
}

func GetProject(id string) (*Project, error) {
	var project Project
	err := Conn.Get(&project, Conn.Rebind("SELECT * FROM projects WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("error getting project: %w", notFoundIfNoRows(err, "project"))
	}
	project.hydrate()
	return &project, nil
}

func GetProjectBySlug(slug string) (*Project, error) {
	var project Project
	err := Conn.Get(&project, Conn.Rebind("SELECT * FROM projects WHERE slug = ?"), slug)
	if err != nil {
		return nil, fmt.Errorf("error getting project by slug: %w", notFoundIfNoRows(err, "project"))
	}
	project.hydrate()
	return &project, nil
}

func CreateProject(project *Project, tx *sqlx.Tx) error {
	project.Id = uuid.New().String()
	project.CreatedAt = now()
	project.UpdatedAt = project.CreatedAt
	project.dehydrate()

	_, err := tx.NamedExec(`INSERT INTO projects (id, slug, title, summary, body_markdown, category, tech_stack, repo_url, demo_url, image_url, featured, published, sort_order, created_at, updated_at)
	VALUES (:id, :slug, :title, :summary, :body_markdown, :category, :tech_stack, :repo_url, :demo_url, :image_url, :featured, :published, :sort_order, :created_at, :updated_at)`, project)

	if err != nil {
		if IsNonUniqueErr(err) {
			return fmt.Errorf("project with slug %q: %w", project.Slug, ErrConflict)
		}
		return fmt.Errorf("error creating project: %v", err)
	}

	return nil
}

func UpdateProject(project *Project, tx *sqlx.Tx) error {
	project.UpdatedAt = now()
	project.dehydrate()

	res, err := tx.NamedExec(`UPDATE projects SET slug = :slug, title = :title, summary = :summary, body_markdown = :body_markdown,
	category = :category, tech_stack = :tech_stack, repo_url = :repo_url, demo_url = :demo_url, image_url = :image_url,
	featured = :featured, published = :published, sort_order = :sort_order, updated_at = :updated_at
	WHERE id = :id`, project)

	if err != nil {
		if IsNonUniqueErr(err) {
			return fmt.Errorf("project with slug %q: %w", project.Slug, ErrConflict)
		}
		return fmt.Errorf("error updating project: %v", err)
	}

	return checkAffected(res, "project")
}

func DeleteProject(id string) error {
	res, err := Conn.Exec(Conn.Rebind("DELETE FROM projects WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("error deleting project: %v", err)
	}
	return checkAffected(res, "project")
}

func CountProjects(publishedOnly bool) (int, error) {
	var count int
	var err error
	if publishedOnly {
		err = Conn.Get(&count, Conn.Rebind("SELECT COUNT(*) FROM projects WHERE published = ?"), true)
	} else {
		err = Conn.Get(&count, "SELECT COUNT(*) FROM projects")
	}
	if err != nil {
		return 0, fmt.Errorf("error counting projects: %v", err)
	}
	return count, nil
}

func ListProjectCategories() ([]string, error) {
	categories := []string{}
	err := Conn.Select(&categories, Conn.Rebind("SELECT DISTINCT category FROM projects WHERE published = ? AND category <> '' ORDER BY category"), true)
	if err != nil {
		return nil, fmt.Errorf("error listing project categories: %v", err)
	}
	return categories, nil
}
