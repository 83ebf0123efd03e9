package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"portfolio-server/db"
	"portfolio-server/types"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// resource wires one admin-editable table to list/get/create/update/delete handlers.
// Req is the json body, M the stored model.
type resource[Req any, M any] struct {
	name   string
	list   func(ctx context.Context) ([]*M, error)
	get    func(id string) (*M, error)
	create func(*M, *sqlx.Tx) error
	update func(*M, *sqlx.Tx) error
	remove func(id string) error
	build  func(req Req, id string) (*M, map[string]string)

	// runs after a successful create, update or delete
	onChange func()
}

func (res resource[Req, M]) changed() {
	if res.onChange != nil {
		res.onChange()
	}
}

// invalidateChatIndex forces the chat retriever to re-read the db on its next search.
func invalidateChatIndex() {
	if deps.Chatbot == nil || deps.Chatbot.Retriever() == nil {
		return
	}
	deps.Chatbot.Retriever().Invalidate()
}

func (res resource[Req, M]) List(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received admin list request", zap.String("resource", res.name))
	if authenticateAdmin(w, r) == nil {
		return
	}

	items, err := res.list(r.Context())
	if err != nil {
		writeDbError(w, err, res.name)
		return
	}
	writeJson(w, http.StatusOK, items)
}

func (res resource[Req, M]) Get(w http.ResponseWriter, r *http.Request) {
	if authenticateAdmin(w, r) == nil {
		return
	}

	item, err := res.get(mux.Vars(r)["id"])
	if err != nil {
		writeDbError(w, err, res.name)
		return
	}
	writeJson(w, http.StatusOK, item)
}

func (res resource[Req, M]) Create(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received admin create request", zap.String("resource", res.name))
	auth := authenticateAdmin(w, r)
	if auth == nil {
		return
	}

	var req Req
	if !readJson(w, r, &req) {
		return
	}

	item, fields := res.build(req, "")
	if fields != nil {
		writeValidationError(w, fields)
		return
	}

	err := db.WithTx(r.Context(), "admin create "+res.name, func(tx *sqlx.Tx) error {
		return res.create(item, tx)
	})
	if err != nil {
		writeDbError(w, err, res.name)
		return
	}

	res.changed()
	zap.L().Info("Successfully created", zap.String("resource", res.name), zap.String("userId", auth.User.Id))

	writeJson(w, http.StatusCreated, item)
}

func (res resource[Req, M]) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	zap.L().Debug("Received admin update request", zap.String("resource", res.name), zap.String("id", id))
	auth := authenticateAdmin(w, r)
	if auth == nil {
		return
	}

	var req Req
	if !readJson(w, r, &req) {
		return
	}

	item, fields := res.build(req, id)
	if fields != nil {
		writeValidationError(w, fields)
		return
	}

	err := db.WithTx(r.Context(), "admin update "+res.name, func(tx *sqlx.Tx) error {
		return res.update(item, tx)
	})
	if err != nil {
		writeDbError(w, err, res.name)
		return
	}

	res.changed()

	updated, err := res.get(id)
	if err != nil {
		writeDbError(w, err, res.name)
		return
	}

	zap.L().Info("Successfully updated", zap.String("resource", res.name), zap.String("id", id), zap.String("userId", auth.User.Id))

	writeJson(w, http.StatusOK, updated)
}

func (res resource[Req, M]) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	auth := authenticateAdmin(w, r)
	if auth == nil {
		return
	}

	if err := res.remove(id); err != nil {
		writeDbError(w, err, res.name)
		return
	}

	res.changed()
	zap.L().Info("Successfully deleted", zap.String("resource", res.name), zap.String("id", id), zap.String("userId", auth.User.Id))

	w.WriteHeader(http.StatusNoContent)
}

var AdminProjects = resource[types.ProjectRequest, db.Project]{
	name: "project",
	list: func(ctx context.Context) ([]*db.Project, error) {
		return db.ListProjects(ctx, db.ProjectFilter{})
	},
	get:    db.GetProject,
	create: db.CreateProject,
	update: db.UpdateProject,
	remove: db.DeleteProject,
	build:  buildProject,

	onChange: invalidateChatIndex,
}

var AdminSkills = resource[types.SkillRequest, db.Skill]{
	name: "skill",
	list: func(ctx context.Context) ([]*db.Skill, error) {
		return db.ListSkills(ctx, "")
	},
	get:    db.GetSkill,
	create: db.CreateSkill,
	update: db.UpdateSkill,
	remove: db.DeleteSkill,
	build:  buildSkill,

	onChange: invalidateChatIndex,
}

var AdminExperiences = resource[types.ExperienceRequest, db.Experience]{
	name:   "experience",
	list:   db.ListExperiences,
	get:    db.GetExperience,
	create: db.CreateExperience,
	update: db.UpdateExperience,
	remove: db.DeleteExperience,
	build:  buildExperience,

	onChange: invalidateChatIndex,
}

var AdminEducations = resource[types.EducationRequest, db.Education]{
	name:   "education",
	list:   db.ListEducations,
	get:    db.GetEducation,
	create: db.CreateEducation,
	update: db.UpdateEducation,
	remove: db.DeleteEducation,
	build:  buildEducation,

	onChange: invalidateChatIndex,
}

var AdminCertifications = resource[types.CertificationRequest, db.Certification]{
	name:   "certification",
	list:   db.ListCertifications,
	get:    db.GetCertification,
	create: db.CreateCertification,
	update: db.UpdateCertification,
	remove: db.DeleteCertification,
	build:  buildCertification,

	onChange: invalidateChatIndex,
}

func buildProject(req types.ProjectRequest, id string) (*db.Project, map[string]string) {
	v := newValidator()
	v.slug("slug", req.Slug)
	v.required("title", req.Title)
	v.maxLen("title", req.Title, 200)
	v.maxLen("summary", req.Summary, 500)
	v.required("category", req.Category)
	v.maxLen("category", req.Category, 50)
	v.httpUrl("repoUrl", req.RepoUrl)
	v.httpUrl("demoUrl", req.DemoUrl)
	for _, t := range req.Tech {
		if strings.Contains(t, ",") {
			v.add("tech", "entries can't contain commas")
		}
	}
	if !v.ok() {
		return nil, v.fields
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	return &db.Project{
		Id:           id,
		Slug:         req.Slug,
		Title:        strings.TrimSpace(req.Title),
		Summary:      strings.TrimSpace(req.Summary),
		BodyMarkdown: req.BodyMarkdown,
		Category:     strings.ToLower(strings.TrimSpace(req.Category)),
		Tech:         req.Tech,
		RepoUrl:      req.RepoUrl,
		DemoUrl:      req.DemoUrl,
		ImageUrl:     req.ImageUrl,
		Featured:     req.Featured,
		Published:    published,
		SortOrder:    req.SortOrder,
	}, nil
}

func buildSkill(req types.SkillRequest, id string) (*db.Skill, map[string]string) {
	v := newValidator()
	v.required("name", req.Name)
	v.maxLen("name", req.Name, 100)
	v.required("category", req.Category)
	v.maxLen("category", req.Category, 50)
	if req.Level == 0 {
		req.Level = 3
	}
	v.rangeInt("level", req.Level, 1, 5)
	v.rangeInt("years", req.Years, 0, 60)
	if !v.ok() {
		return nil, v.fields
	}

	return &db.Skill{
		Id:        id,
		Name:      strings.TrimSpace(req.Name),
		Category:  strings.ToLower(strings.TrimSpace(req.Category)),
		Level:     req.Level,
		Years:     req.Years,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	}, nil
}

func buildExperience(req types.ExperienceRequest, id string) (*db.Experience, map[string]string) {
	v := newValidator()
	v.required("company", req.Company)
	v.required("role", req.Role)
	if req.StartDate.IsZero() {
		v.add("startDate", "is required")
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		v.add("endDate", "must not be before startDate")
	}
	if !v.ok() {
		return nil, v.fields
	}

	return &db.Experience{
		Id:          id,
		Company:     strings.TrimSpace(req.Company),
		Role:        strings.TrimSpace(req.Role),
		Location:    strings.TrimSpace(req.Location),
		StartDate:   req.StartDate.UTC(),
		EndDate:     utcPtr(req.EndDate),
		Description: req.Description,
		Bullets:     req.Highlights,
		SortOrder:   req.SortOrder,
	}, nil
}

func buildEducation(req types.EducationRequest, id string) (*db.Education, map[string]string) {
	v := newValidator()
	v.required("institution", req.Institution)
	v.required("degree", req.Degree)
	if req.StartDate.IsZero() {
		v.add("startDate", "is required")
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		v.add("endDate", "must not be before startDate")
	}
	if !v.ok() {
		return nil, v.fields
	}

	return &db.Education{
		Id:          id,
		Institution: strings.TrimSpace(req.Institution),
		Degree:      strings.TrimSpace(req.Degree),
		Field:       strings.TrimSpace(req.Field),
		StartDate:   req.StartDate.UTC(),
		EndDate:     utcPtr(req.EndDate),
		Description: req.Description,
	}, nil
}

func buildCertification(req types.CertificationRequest, id string) (*db.Certification, map[string]string) {
	v := newValidator()
	v.required("name", req.Name)
	v.required("issuer", req.Issuer)
	if req.IssuedAt.IsZero() {
		v.add("issuedAt", "is required")
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(req.IssuedAt) {
		v.add("expiresAt", "must not be before issuedAt")
	}
	v.httpUrl("credentialUrl", req.CredentialUrl)
	if !v.ok() {
		return nil, v.fields
	}

	return &db.Certification{
		Id:            id,
		Name:          strings.TrimSpace(req.Name),
		Issuer:        strings.TrimSpace(req.Issuer),
		IssuedAt:      req.IssuedAt.UTC(),
		ExpiresAt:     utcPtr(req.ExpiresAt),
		CredentialUrl: req.CredentialUrl,
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
