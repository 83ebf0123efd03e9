package handlers

import (
	"net/http"
	"strconv"

	"portfolio-server/content"
	"portfolio-server/db"
	"portfolio-server/types"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const summaryFeaturedLimit = 3

type SummaryCounts struct {
	Projects       int `json:"projects"`
	Skills         int `json:"skills"`
	Experiences    int `json:"experiences"`
	Certifications int `json:"certifications"`
}

type SummaryResponse struct {
	Profile          *content.Profile    `json:"profile"`
	Counts           SummaryCounts       `json:"counts"`
	FeaturedProjects []*db.Project       `json:"featuredProjects"`
	SkillCategories  []*db.SkillCategory `json:"skillCategories"`
	CurrentRole      *db.Experience      `json:"currentRole"`
}

type ProjectDetail struct {
	*db.Project
	BodyHtml string `json:"bodyHtml"`
}

func GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for GetProfileHandler")
	writeJson(w, http.StatusOK, deps.Content.Profile())
}

func GetInterestsHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for GetInterestsHandler")
	interests := deps.Content.Profile().Interests
	if interests == nil {
		interests = []content.Interest{}
	}
	writeJson(w, http.StatusOK, interests)
}

// SummaryHandler is the landing page payload. Db queries run concurrently; any db failure
// degrades to the profile alone.
func SummaryHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for SummaryHandler")

	res := SummaryResponse{
		Profile:          deps.Content.Profile(),
		FeaturedProjects: []*db.Project{},
		SkillCategories:  []*db.SkillCategory{},
	}

	if err := dbAvailable(); err != nil {
		writeFallback(w, res, err)
		return
	}

	var (
		projects        []*db.Project
		featured        []*db.Project
		skillCategories []*db.SkillCategory
		experiences     []*db.Experience
		certifications  []*db.Certification
	)

	// the first failure cancels the remaining queries
	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() error {
		var err error
		projects, err = db.ListProjects(ctx, db.ProjectFilter{PublishedOnly: true})
		return err
	})
	eg.Go(func() error {
		var err error
		featured, err = db.ListProjects(ctx, db.ProjectFilter{PublishedOnly: true, FeaturedOnly: true, Limit: summaryFeaturedLimit})
		return err
	})
	eg.Go(func() error {
		var err error
		skillCategories, err = db.ListSkillCategories(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		experiences, err = db.ListExperiences(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		certifications, err = db.ListCertifications(ctx)
		return err
	})

	if err := eg.Wait(); err != nil {
		writeFallback(w, res, err)
		return
	}

	skills := 0
	for _, c := range skillCategories {
		skills += c.Count
	}

	res.Counts = SummaryCounts{
		Projects:       len(projects),
		Skills:         skills,
		Experiences:    len(experiences),
		Certifications: len(certifications),
	}
	res.FeaturedProjects = featured
	res.SkillCategories = skillCategories
	for _, e := range experiences {
		if e.Current() {
			res.CurrentRole = e
			break
		}
	}

	writeJson(w, http.StatusOK, res)
}

func ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListProjectsHandler")

	q := r.URL.Query()
	filter := db.ProjectFilter{
		Category:      q.Get("category"),
		PublishedOnly: true,
	}
	filter.FeaturedOnly, _ = strconv.ParseBool(q.Get("featured"))
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = min(limit, 100)
	}

	if err := dbAvailable(); err != nil {
		writeFallback(w, []*db.Project{}, err)
		return
	}

	projects, err := db.ListProjects(r.Context(), filter)
	if err != nil {
		writeFallback(w, []*db.Project{}, err)
		return
	}

	writeJson(w, http.StatusOK, projects)
}

func GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	zap.L().Debug("Received request for GetProjectHandler", zap.String("slug", slug))

	if err := dbAvailable(); err != nil {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeUnavailable, Status: http.StatusServiceUnavailable, Msg: "Projects are temporarily unavailable"})
		return
	}

	project, err := db.GetProjectBySlug(slug)
	if err != nil {
		writeDbError(w, err, "project")
		return
	}

	if !project.Published {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeNotFound, Status: http.StatusNotFound, Msg: "project not found"})
		return
	}

	writeJson(w, http.StatusOK, ProjectDetail{Project: project, BodyHtml: content.RenderMarkdown(project.BodyMarkdown)})
}

func ListProjectCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListProjectCategoriesHandler")

	if err := dbAvailable(); err != nil {
		writeFallback(w, []string{}, err)
		return
	}

	categories, err := db.ListProjectCategories()
	if err != nil {
		writeFallback(w, []string{}, err)
		return
	}
	writeJson(w, http.StatusOK, categories)
}

func ListSkillsHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	zap.L().Debug("Received request for ListSkillsHandler", zap.String("category", category))

	if err := dbAvailable(); err != nil {
		writeFallback(w, []*db.Skill{}, err)
		return
	}

	skills, err := db.ListSkills(r.Context(), category)
	if err != nil {
		writeFallback(w, []*db.Skill{}, err)
		return
	}
	writeJson(w, http.StatusOK, skills)
}

func ListSkillCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListSkillCategoriesHandler")

	if err := dbAvailable(); err != nil {
		writeFallback(w, []*db.SkillCategory{}, err)
		return
	}

	categories, err := db.ListSkillCategories(r.Context())
	if err != nil {
		writeFallback(w, []*db.SkillCategory{}, err)
		return
	}
	writeJson(w, http.StatusOK, categories)
}

func ListExperienceHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListExperienceHandler")

	if err := dbAvailable(); err != nil {
		writeFallback(w, []*db.Experience{}, err)
		return
	}

	experiences, err := db.ListExperiences(r.Context())
	if err != nil {
		writeFallback(w, []*db.Experience{}, err)
		return
	}
	writeJson(w, http.StatusOK, experiences)
}

func ListEducationHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListEducationHandler")

	if err := dbAvailable(); err != nil {
		writeFallback(w, []*db.Education{}, err)
		return
	}

	educations, err := db.ListEducations(r.Context())
	if err != nil {
		writeFallback(w, []*db.Education{}, err)
		return
	}
	writeJson(w, http.StatusOK, educations)
}

type CertificationView struct {
	*db.Certification
	Expired bool `json:"expired"`
}

func ListCertificationsHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListCertificationsHandler")

	if err := dbAvailable(); err != nil {
		writeFallback(w, []CertificationView{}, err)
		return
	}

	certifications, err := db.ListCertifications(r.Context())
	if err != nil {
		writeFallback(w, []CertificationView{}, err)
		return
	}

	now := timeNow()
	res := make([]CertificationView, 0, len(certifications))
	for _, c := range certifications {
		res = append(res, CertificationView{Certification: c, Expired: c.Expired(now)})
	}
	writeJson(w, http.StatusOK, res)
}
