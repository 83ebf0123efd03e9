package handlers

import (
	"net/http"
	"strings"

	"portfolio-server/content"
	"portfolio-server/db"
	"portfolio-server/hooks"
	"portfolio-server/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxNameLength    = 100
	maxSubjectLength = 200
	maxMessageLength = 5000
)

func validateContact(req types.ContactRequest) map[string]string {
	v := newValidator()
	v.required("name", req.Name)
	v.maxLen("name", req.Name, maxNameLength)
	v.email("email", req.Email)
	v.maxLen("subject", req.Subject, maxSubjectLength)
	v.required("message", req.Message)
	v.maxLen("message", req.Message, maxMessageLength)
	if v.ok() {
		return nil
	}
	return v.fields
}

func CreateContactHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for CreateContactHandler")

	var req types.ContactRequest
	if !readJson(w, r, &req) {
		return
	}

	if fields := validateContact(req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	// bots fill every field; pretend it worked so they don't retry
	if req.Website != "" {
		zap.L().Info("contact honeypot triggered", zap.String("ip", clientIp(r)))
		writeJson(w, http.StatusCreated, types.CreatedResponse{Id: uuid.New().String(), Message: "Thanks, your message was sent."})
		return
	}

	if err := dbAvailable(); err != nil {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeUnavailable, Status: http.StatusServiceUnavailable, Msg: "Contact form is temporarily unavailable"})
		return
	}

	sub := db.ContactSubmission{
		Name:      content.SanitizeText(strings.TrimSpace(req.Name)),
		Email:     strings.TrimSpace(req.Email),
		Subject:   content.SanitizeText(strings.TrimSpace(req.Subject)),
		Message:   content.SanitizeText(strings.TrimSpace(req.Message)),
		IpHash:    visitorHash(r),
		UserAgent: truncate(r.UserAgent(), 500),
	}

	if err := db.CreateContactSubmission(&sub); err != nil {
		writeDbError(w, err, "contact submission")
		return
	}

	if apiErr := hooks.ExecHook(hooks.ContactSubmitted, hooks.HookParams{Contact: &sub}); apiErr != nil {
		zap.L().Warn("contact submitted hook failed", zap.String("id", sub.Id), zap.String("msg", apiErr.Msg))
	}

	zap.L().Info("Successfully created contact submission", zap.String("id", sub.Id))

	writeJson(w, http.StatusCreated, types.CreatedResponse{Id: sub.Id, Message: "Thanks, your message was sent."})
}
