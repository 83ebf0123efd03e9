package handlers

import (
	"net/http"
	"strconv"

	"portfolio-server/db"
	"portfolio-server/types"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RecordViewHandler counts a view. Views are best effort: with no database the visit is
// acknowledged and dropped.
func RecordViewHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	zap.L().Debug("Received request for RecordViewHandler", zap.String("slug", slug))

	v := newValidator()
	v.slug("slug", slug)
	if !v.ok() {
		writeValidationError(w, v.fields)
		return
	}

	var req types.PageViewRequest
	if r.ContentLength > 0 && !readJson(w, r, &req) {
		return
	}
	referrer := req.Referrer
	if referrer == "" {
		referrer = r.Referer()
	}

	if err := dbAvailable(); err != nil {
		writeFallback(w, db.PageViewStats{Slug: slug}, err)
		return
	}

	if err := db.RecordPageView(slug, visitorHash(r), truncate(referrer, 500)); err != nil {
		writeFallback(w, db.PageViewStats{Slug: slug}, err)
		return
	}

	stats, err := db.GetPageViewStats(slug)
	if err != nil {
		writeFallback(w, db.PageViewStats{Slug: slug}, err)
		return
	}

	writeJson(w, http.StatusCreated, stats)
}

func GetViewsHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	zap.L().Debug("Received request for GetViewsHandler", zap.String("slug", slug))

	v := newValidator()
	v.slug("slug", slug)
	if !v.ok() {
		writeValidationError(w, v.fields)
		return
	}

	if err := dbAvailable(); err != nil {
		writeFallback(w, db.PageViewStats{Slug: slug}, err)
		return
	}

	stats, err := db.GetPageViewStats(slug)
	if err != nil {
		writeFallback(w, db.PageViewStats{Slug: slug}, err)
		return
	}
	writeJson(w, http.StatusOK, stats)
}

func TopViewsHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for TopViewsHandler")

	limit := 10
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = min(n, 50)
	}

	if err := dbAvailable(); err != nil {
		writeFallback(w, []*db.PageViewStats{}, err)
		return
	}

	top, err := db.TopPages(limit)
	if err != nil {
		writeFallback(w, []*db.PageViewStats{}, err)
		return
	}
	writeJson(w, http.StatusOK, top)
}
