package content

import (
	"fmt"
	"os"
	"strings"
	"time"

	"portfolio-server/db"

	"gopkg.in/yaml.v3"
)

// SeedFile is the yaml shape accepted by `portfolio seed`.
type SeedFile struct {
	Projects []struct {
		Slug      string   `yaml:"slug"`
		Title     string   `yaml:"title"`
		Summary   string   `yaml:"summary"`
		Body      string   `yaml:"body"`
		Category  string   `yaml:"category"`
		Tech      []string `yaml:"tech"`
		RepoUrl   string   `yaml:"repo_url"`
		DemoUrl   string   `yaml:"demo_url"`
		ImageUrl  string   `yaml:"image_url"`
		Featured  bool     `yaml:"featured"`
		Draft     bool     `yaml:"draft"`
		SortOrder int      `yaml:"sort_order"`
	} `yaml:"projects"`

	Skills []struct {
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
		Level    int    `yaml:"level"`
		Years    int    `yaml:"years"`
		Icon     string `yaml:"icon"`
	} `yaml:"skills"`

	Experience []struct {
		Company     string   `yaml:"company"`
		Role        string   `yaml:"role"`
		Location    string   `yaml:"location"`
		Start       string   `yaml:"start"`
		End         string   `yaml:"end"`
		Description string   `yaml:"description"`
		Highlights  []string `yaml:"highlights"`
	} `yaml:"experience"`

	Education []struct {
		Institution string `yaml:"institution"`
		Degree      string `yaml:"degree"`
		Field       string `yaml:"field"`
		Start       string `yaml:"start"`
		End         string `yaml:"end"`
		Description string `yaml:"description"`
	} `yaml:"education"`

	Certifications []struct {
		Name          string `yaml:"name"`
		Issuer        string `yaml:"issuer"`
		Issued        string `yaml:"issued"`
		Expires       string `yaml:"expires"`
		CredentialUrl string `yaml:"credential_url"`
	} `yaml:"certifications"`
}

func LoadSeed(path string) (*db.Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed converts the yaml into db rows. Dates are YYYY-MM or YYYY-MM-DD; an empty
// or "present" end date means ongoing.
func ParseSeed(data []byte) (*db.Seed, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing seed file: %w", err)
	}

	seed := &db.Seed{}

	for i, p := range file.Projects {
		if p.Slug == "" || p.Title == "" {
			return nil, fmt.Errorf("projects[%d]: slug and title are required", i)
		}
		seed.Projects = append(seed.Projects, &db.Project{
			Slug:         p.Slug,
			Title:        p.Title,
			Summary:      p.Summary,
			BodyMarkdown: p.Body,
			Category:     p.Category,
			Tech:         p.Tech,
			RepoUrl:      p.RepoUrl,
			DemoUrl:      p.DemoUrl,
			ImageUrl:     p.ImageUrl,
			Featured:     p.Featured,
			Published:    !p.Draft,
			SortOrder:    p.SortOrder,
		})
	}

	for i, s := range file.Skills {
		if s.Name == "" || s.Category == "" {
			return nil, fmt.Errorf("skills[%d]: name and category are required", i)
		}
		level := s.Level
		if level == 0 {
			level = 3
		}
		seed.Skills = append(seed.Skills, &db.Skill{
			Name:      s.Name,
			Category:  s.Category,
			Level:     level,
			Years:     s.Years,
			Icon:      s.Icon,
			SortOrder: i,
		})
	}

	for i, e := range file.Experience {
		start, end, err := parseRange(e.Start, e.End)
		if err != nil {
			return nil, fmt.Errorf("experience[%d]: %w", i, err)
		}
		seed.Experiences = append(seed.Experiences, &db.Experience{
			Company:     e.Company,
			Role:        e.Role,
			Location:    e.Location,
			StartDate:   start,
			EndDate:     end,
			Description: e.Description,
			Bullets:     e.Highlights,
			SortOrder:   i,
		})
	}

	for i, e := range file.Education {
		start, end, err := parseRange(e.Start, e.End)
		if err != nil {
			return nil, fmt.Errorf("education[%d]: %w", i, err)
		}
		seed.Educations = append(seed.Educations, &db.Education{
			Institution: e.Institution,
			Degree:      e.Degree,
			Field:       e.Field,
			StartDate:   start,
			EndDate:     end,
			Description: e.Description,
		})
	}

	for i, c := range file.Certifications {
		issued, expires, err := parseRange(c.Issued, c.Expires)
		if err != nil {
			return nil, fmt.Errorf("certifications[%d]: %w", i, err)
		}
		seed.Certifications = append(seed.Certifications, &db.Certification{
			Name:          c.Name,
			Issuer:        c.Issuer,
			IssuedAt:      issued,
			ExpiresAt:     expires,
			CredentialUrl: c.CredentialUrl,
		})
	}

	return seed, nil
}

func parseRange(start, end string) (time.Time, *time.Time, error) {
	s, err := parseDate(start)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("start: %w", err)
	}

	end = strings.TrimSpace(end)
	if end == "" || strings.EqualFold(end, "present") {
		return s, nil, nil
	}

	e, err := parseDate(end)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("end: %w", err)
	}
	if e.Before(s) {
		return time.Time{}, nil, fmt.Errorf("end %s is before start %s", end, start)
	}

	return s, &e, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD, YYYY-MM or YYYY", s)
}
