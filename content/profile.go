package content

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type SocialLink struct {
	Label string `yaml:"label" json:"label"`
	Url   string `yaml:"url" json:"url"`
	Icon  string `yaml:"icon" json:"icon,omitempty"`
}

type Interest struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
	Icon        string `yaml:"icon" json:"icon,omitempty"`
}

// Profile is the owner's public bio. It lives in a yaml file rather than the
// database so it can be edited and deployed with the site.
type Profile struct {
	Name         string       `yaml:"name" json:"name"`
	Headline     string       `yaml:"headline" json:"headline"`
	Location     string       `yaml:"location" json:"location"`
	Email        string       `yaml:"email" json:"email,omitempty"`
	AvatarUrl    string       `yaml:"avatar_url" json:"avatarUrl,omitempty"`
	ResumeUrl    string       `yaml:"resume_url" json:"resumeUrl,omitempty"`
	Summary      string       `yaml:"summary" json:"summary"`
	SummaryHtml  string       `yaml:"-" json:"summaryHtml"`
	Availability string       `yaml:"availability" json:"availability,omitempty"`
	Social       []SocialLink `yaml:"social" json:"social"`
	Interests    []Interest   `yaml:"interests" json:"interests"`
}

func DefaultProfile() *Profile {
	p := &Profile{
		Name:      "Portfolio Owner",
		Headline:  "Software Engineer",
		Summary:   "Building reliable software.",
		Social:    []SocialLink{},
		Interests: []Interest{},
	}
	p.SummaryHtml = RenderMarkdown(p.Summary)
	return p
}

func (p *Profile) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	for i, link := range p.Social {
		if !strings.HasPrefix(link.Url, "https://") && !strings.HasPrefix(link.Url, "mailto:") {
			errs = append(errs, fmt.Errorf("social[%d] url must be https or mailto", i))
		}
	}
	return errors.Join(errs...)
}

func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("error parsing profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	if p.Social == nil {
		p.Social = []SocialLink{}
	}
	if p.Interests == nil {
		p.Interests = []Interest{}
	}
	p.SummaryHtml = RenderMarkdown(p.Summary)
	return &p, nil
}

func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProfile(data)
}
