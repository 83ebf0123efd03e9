package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"portfolio-server/content"
	"portfolio-server/db"
	"portfolio-server/types"

	"go.uber.org/zap"
)

const (
	maxGuestbookLength = 500
	guestbookPageLimit = 50
)

func ListGuestbookHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListGuestbookHandler")

	limit := guestbookPageLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n < limit {
		limit = n
	}

	if err := dbAvailable(); err != nil {
		writeFallback(w, []*db.GuestbookEntry{}, err)
		return
	}

	entries, err := db.ListGuestbookEntries(db.ModerationApproved, limit)
	if err != nil {
		writeFallback(w, []*db.GuestbookEntry{}, err)
		return
	}
	writeJson(w, http.StatusOK, entries)
}

func CreateGuestbookHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for CreateGuestbookHandler")

	var req types.GuestbookRequest
	if !readJson(w, r, &req) {
		return
	}

	v := newValidator()
	v.required("name", req.Name)
	v.maxLen("name", req.Name, maxNameLength)
	v.required("message", req.Message)
	v.maxLen("message", req.Message, maxGuestbookLength)
	v.httpUrl("website", req.Website)
	v.maxLen("website", req.Website, 300)
	if !v.ok() {
		writeValidationError(w, v.fields)
		return
	}

	if err := dbAvailable(); err != nil {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeUnavailable, Status: http.StatusServiceUnavailable, Msg: "Guestbook is temporarily unavailable"})
		return
	}

	entry := db.GuestbookEntry{
		Name:    content.SanitizeText(strings.TrimSpace(req.Name)),
		Message: content.SanitizeText(strings.TrimSpace(req.Message)),
		Website: strings.TrimSpace(req.Website),
		IpHash:  visitorHash(r),
	}

	if err := db.CreateGuestbookEntry(&entry); err != nil {
		writeDbError(w, err, "guestbook entry")
		return
	}

	zap.L().Info("Successfully created guestbook entry", zap.String("id", entry.Id))

	writeJson(w, http.StatusCreated, types.CreatedResponse{Id: entry.Id, Status: string(entry.Status), Message: "Thanks for signing! Your entry will appear once approved."})
}
