package handlers

import (
	"net/http"

	"portfolio-server/db"
	"portfolio-server/types"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func ListContactsHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListContactsHandler")
	if authenticateAdmin(w, r) == nil {
		return
	}

	status := db.ContactStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeValidationError(w, map[string]string{"status": "must be new, read or archived"})
		return
	}

	subs, err := db.ListContactSubmissions(status)
	if err != nil {
		writeDbError(w, err, "contact submission")
		return
	}
	writeJson(w, http.StatusOK, subs)
}

func UpdateContactStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	zap.L().Debug("Received request for UpdateContactStatusHandler", zap.String("id", id))
	if authenticateAdmin(w, r) == nil {
		return
	}

	var req types.ContactStatusRequest
	if !readJson(w, r, &req) {
		return
	}

	status := db.ContactStatus(req.Status)
	if !status.Valid() {
		writeValidationError(w, map[string]string{"status": "must be new, read or archived"})
		return
	}

	if err := db.UpdateContactStatus(id, status); err != nil {
		writeDbError(w, err, "contact submission")
		return
	}

	sub, err := db.GetContactSubmission(id)
	if err != nil {
		writeDbError(w, err, "contact submission")
		return
	}
	writeJson(w, http.StatusOK, sub)
}

func DeleteContactHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if authenticateAdmin(w, r) == nil {
		return
	}

	if err := db.DeleteContactSubmission(id); err != nil {
		writeDbError(w, err, "contact submission")
		return
	}

	zap.L().Info("Successfully deleted contact submission", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func moderationStatusParam(w http.ResponseWriter, r *http.Request) (db.ModerationStatus, bool) {
	status := db.ModerationStatus(r.URL.Query().Get("status"))
	if status == "" {
		return db.ModerationPending, true
	}
	if status == "all" {
		return "", true
	}
	if !status.Valid() {
		writeValidationError(w, map[string]string{"status": "must be pending, approved, rejected or all"})
		return "", false
	}
	return status, true
}

func readModeration(w http.ResponseWriter, r *http.Request) (db.ModerationStatus, bool) {
	var req types.ModerationRequest
	if !readJson(w, r, &req) {
		return "", false
	}
	status := db.ModerationStatus(req.Status)
	if !status.Valid() {
		writeValidationError(w, map[string]string{"status": "must be pending, approved or rejected"})
		return "", false
	}
	return status, true
}

func ListCommentsForModerationHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListCommentsForModerationHandler")
	if authenticateAdmin(w, r) == nil {
		return
	}

	status, ok := moderationStatusParam(w, r)
	if !ok {
		return
	}

	comments, err := db.ListCommentsForModeration(status)
	if err != nil {
		writeDbError(w, err, "comment")
		return
	}
	writeJson(w, http.StatusOK, comments)
}

func ModerateCommentHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	zap.L().Debug("Received request for ModerateCommentHandler", zap.String("id", id))
	if authenticateAdmin(w, r) == nil {
		return
	}

	status, ok := readModeration(w, r)
	if !ok {
		return
	}

	if err := db.SetCommentStatus(id, status); err != nil {
		writeDbError(w, err, "comment")
		return
	}

	comment, err := db.GetComment(id)
	if err != nil {
		writeDbError(w, err, "comment")
		return
	}

	zap.L().Info("Successfully moderated comment", zap.String("id", id), zap.String("status", string(status)))
	writeJson(w, http.StatusOK, comment)
}

func DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if authenticateAdmin(w, r) == nil {
		return
	}

	if err := db.DeleteComment(id); err != nil {
		writeDbError(w, err, "comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ListGuestbookForModerationHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListGuestbookForModerationHandler")
	if authenticateAdmin(w, r) == nil {
		return
	}

	status, ok := moderationStatusParam(w, r)
	if !ok {
		return
	}

	entries, err := db.ListGuestbookEntries(status, 0)
	if err != nil {
		writeDbError(w, err, "guestbook entry")
		return
	}
	writeJson(w, http.StatusOK, entries)
}

func ModerateGuestbookHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	zap.L().Debug("Received request for ModerateGuestbookHandler", zap.String("id", id))
	if authenticateAdmin(w, r) == nil {
		return
	}

	status, ok := readModeration(w, r)
	if !ok {
		return
	}

	if err := db.SetGuestbookEntryStatus(id, status); err != nil {
		writeDbError(w, err, "guestbook entry")
		return
	}

	zap.L().Info("Successfully moderated guestbook entry", zap.String("id", id), zap.String("status", string(status)))
	writeJson(w, http.StatusOK, types.NewsletterResponse{Status: string(status), Message: "updated"})
}

func DeleteGuestbookHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if authenticateAdmin(w, r) == nil {
		return
	}

	if err := db.DeleteGuestbookEntry(id); err != nil {
		writeDbError(w, err, "guestbook entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ListSubscribersHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListSubscribersHandler")
	if authenticateAdmin(w, r) == nil {
		return
	}

	status := db.SubscriberStatus(r.URL.Query().Get("status"))
	switch status {
	case "", db.SubscriberPending, db.SubscriberConfirmed, db.SubscriberUnsubscribed:
	default:
		writeValidationError(w, map[string]string{"status": "must be pending, confirmed or unsubscribed"})
		return
	}

	subs, err := db.ListSubscribers(status)
	if err != nil {
		writeDbError(w, err, "subscriber")
		return
	}
	writeJson(w, http.StatusOK, subs)
}
