package model

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"portfolio-server/content"
	"portfolio-server/db"

	"go.uber.org/zap"
)

// PortfolioCorpus indexes the profile plus whatever the database can provide. When the
// database is unavailable the corpus is just the profile, so the chatbot keeps answering.
func PortfolioCorpus(store *content.Store) CorpusFunc {
	return func(ctx context.Context) ([]Snippet, error) {
		snippets := ProfileSnippets(store.Profile())

		if db.Conn == nil {
			return snippets, nil
		}

		dbSnippets, err := databaseSnippets(ctx)
		if err != nil {
			zap.L().Warn("chat corpus falling back to profile only", zap.Error(err))
			return snippets, nil
		}

		return append(snippets, dbSnippets...), nil
	}
}

func ProfileSnippets(p *content.Profile) []Snippet {
	var interests []string
	for _, i := range p.Interests {
		interests = append(interests, i.Name)
	}

	res := []Snippet{{
		Kind:  "profile",
		Title: p.Name,
		Url:   "/about",
		Text:  strings.Join([]string{p.Headline, p.Location, p.Summary, p.Availability}, "\n"),
		Tags:  "about bio background " + p.Headline,
	}}

	if len(interests) > 0 {
		res = append(res, Snippet{
			Kind:  "interests",
			Title: "Interests",
			Url:   "/about#interests",
			Text:  strings.Join(interests, ", "),
			Tags:  "interests hobbies",
		})
	}

	return res
}

func databaseSnippets(ctx context.Context) ([]Snippet, error) {
	var res []Snippet

	projects, err := db.ListProjects(ctx, db.ProjectFilter{PublishedOnly: true})
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		res = append(res, Snippet{
			Kind:  "project",
			Title: p.Title,
			Url:   "/projects/" + p.Slug,
			Text:  p.Summary + "\n" + p.BodyMarkdown,
			Tags:  p.Category + " " + strings.Join(p.Tech, " ") + " project",
		})
	}

	skills, err := db.ListSkills(ctx, "")
	if err != nil {
		return nil, err
	}
	byCategory := map[string][]string{}
	for _, s := range skills {
		byCategory[s.Category] = append(byCategory[s.Category], s.Name)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		res = append(res, Snippet{
			Kind:  "skills",
			Title: c + " skills",
			Url:   "/skills?category=" + c,
			Text:  strings.Join(byCategory[c], ", "),
			Tags:  "skills stack tools technologies " + c,
		})
	}

	experiences, err := db.ListExperiences(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range experiences {
		period := e.StartDate.Format("Jan 2006") + " - present"
		if e.EndDate != nil {
			period = e.StartDate.Format("Jan 2006") + " - " + e.EndDate.Format("Jan 2006")
		}
		res = append(res, Snippet{
			Kind:  "experience",
			Title: fmt.Sprintf("%s at %s", e.Role, e.Company),
			Url:   "/experience",
			Text:  period + "\n" + e.Description + "\n" + strings.Join(e.Bullets, "\n"),
			Tags:  "experience work job career " + e.Company,
		})
	}

	educations, err := db.ListEducations(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range educations {
		res = append(res, Snippet{
			Kind:  "education",
			Title: strings.TrimSpace(e.Degree + " " + e.Field + ", " + e.Institution),
			Url:   "/education",
			Text:  e.Description,
			Tags:  "education degree university study " + e.Institution,
		})
	}

	certs, err := db.ListCertifications(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range certs {
		res = append(res, Snippet{
			Kind:  "certification",
			Title: c.Name,
			Url:   c.CredentialUrl,
			Text:  "Issued by " + c.Issuer + " in " + c.IssuedAt.Format("January 2006"),
			Tags:  "certification certificate " + c.Issuer,
		})
	}

	return res, nil
}
