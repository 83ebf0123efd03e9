package handlers

import (
	"errors"
	"net/http"
	"strings"

	"portfolio-server/content"
	"portfolio-server/db"
	"portfolio-server/hooks"
	"portfolio-server/types"

	"go.uber.org/zap"
)

const maxCommentLength = 2000

func ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	zap.L().Debug("Received request for ListCommentsHandler", zap.String("slug", slug))

	v := newValidator()
	v.slug("slug", slug)
	if !v.ok() {
		writeValidationError(w, v.fields)
		return
	}

	if err := dbAvailable(); err != nil {
		writeFallback(w, []*db.CommentThread{}, err)
		return
	}

	threads, err := db.ListApprovedComments(slug)
	if err != nil {
		writeFallback(w, []*db.CommentThread{}, err)
		return
	}
	writeJson(w, http.StatusOK, threads)
}

func CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for CreateCommentHandler")

	var req types.CreateCommentRequest
	if !readJson(w, r, &req) {
		return
	}
	if req.PostSlug == "" {
		req.PostSlug = r.URL.Query().Get("slug")
	}

	v := newValidator()
	v.slug("postSlug", req.PostSlug)
	v.required("authorName", req.AuthorName)
	v.maxLen("authorName", req.AuthorName, maxNameLength)
	if req.AuthorEmail != "" {
		v.email("authorEmail", req.AuthorEmail)
	}
	v.required("body", req.Body)
	v.maxLen("body", req.Body, maxCommentLength)
	if !v.ok() {
		writeValidationError(w, v.fields)
		return
	}

	if err := dbAvailable(); err != nil {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeUnavailable, Status: http.StatusServiceUnavailable, Msg: "Comments are temporarily unavailable"})
		return
	}

	body := strings.TrimSpace(req.Body)
	comment := db.Comment{
		PostSlug:    req.PostSlug,
		AuthorName:  content.SanitizeText(strings.TrimSpace(req.AuthorName)),
		AuthorEmail: strings.TrimSpace(req.AuthorEmail),
		Body:        content.SanitizeText(body),
		BodyHtml:    content.RenderComment(body),
		IpHash:      visitorHash(r),
	}
	if req.ParentId != "" {
		parentId := req.ParentId
		comment.ParentId = &parentId
	}

	if err := db.CreateComment(&comment); err != nil {
		if errors.Is(err, db.ErrInvalidParent) {
			writeValidationError(w, map[string]string{"parentId": err.Error()})
			return
		}
		writeDbError(w, err, "comment")
		return
	}

	if apiErr := hooks.ExecHook(hooks.CommentCreated, hooks.HookParams{Comment: &comment}); apiErr != nil {
		zap.L().Warn("comment created hook failed", zap.String("id", comment.Id), zap.String("msg", apiErr.Msg))
	}

	zap.L().Info("Successfully created comment", zap.String("id", comment.Id), zap.String("slug", comment.PostSlug))

	writeJson(w, http.StatusCreated, types.CreatedResponse{Id: comment.Id, Status: string(comment.Status), Message: "Thanks! Your comment is awaiting moderation."})
}
