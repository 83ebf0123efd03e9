package handlers

import (
	"errors"
	"net/http"

	"portfolio-server/db"
	"portfolio-server/hooks"
	"portfolio-server/types"

	"go.uber.org/zap"
)

func SubscribeNewsletterHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for SubscribeNewsletterHandler")

	var req types.NewsletterRequest
	if !readJson(w, r, &req) {
		return
	}

	v := newValidator()
	v.email("email", req.Email)
	if !v.ok() {
		writeValidationError(w, v.fields)
		return
	}

	if err := dbAvailable(); err != nil {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeUnavailable, Status: http.StatusServiceUnavailable, Msg: "Newsletter is temporarily unavailable"})
		return
	}

	sub, token, err := db.Subscribe(r.Context(), req.Email)
	if err != nil {
		writeDbError(w, err, "subscription")
		return
	}

	if token == "" {
		writeJson(w, http.StatusOK, types.NewsletterResponse{Status: string(sub.Status), Message: "You're already subscribed."})
		return
	}

	params := hooks.HookParams{NewsletterSubscribedParams: &hooks.NewsletterSubscribedParams{Subscriber: sub, ConfirmToken: token}}
	if apiErr := hooks.ExecHook(hooks.NewsletterSubscribed, params); apiErr != nil {
		zap.L().Warn("newsletter subscribed hook failed", zap.String("id", sub.Id), zap.String("msg", apiErr.Msg))
	}

	zap.L().Info("Successfully created newsletter subscription", zap.String("id", sub.Id))

	writeJson(w, http.StatusAccepted, types.NewsletterResponse{Status: string(sub.Status), Message: "Check your inbox to confirm your subscription."})
}

func ConfirmNewsletterHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ConfirmNewsletterHandler")

	if err := dbAvailable(); err != nil {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeUnavailable, Status: http.StatusServiceUnavailable, Msg: "Newsletter is temporarily unavailable"})
		return
	}

	sub, err := db.ConfirmSubscription(r.URL.Query().Get("token"))
	if err != nil {
		if errors.Is(err, db.ErrInvalidConfirmToken) {
			writeApiError(w, types.ApiError{Type: types.ApiErrorTypeNotFound, Status: http.StatusNotFound, Msg: err.Error()})
			return
		}
		writeDbError(w, err, "subscription")
		return
	}

	zap.L().Info("Successfully confirmed newsletter subscription", zap.String("id", sub.Id))

	writeJson(w, http.StatusOK, types.NewsletterResponse{Status: string(sub.Status), Message: "Your subscription is confirmed."})
}

// UnsubscribeNewsletterHandler answers the same way whether or not the address was
// subscribed, so the endpoint can't be used to probe the list.
func UnsubscribeNewsletterHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for UnsubscribeNewsletterHandler")

	var req types.NewsletterRequest
	if !readJson(w, r, &req) {
		return
	}

	v := newValidator()
	v.email("email", req.Email)
	if !v.ok() {
		writeValidationError(w, v.fields)
		return
	}

	if err := dbAvailable(); err != nil {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeUnavailable, Status: http.StatusServiceUnavailable, Msg: "Newsletter is temporarily unavailable"})
		return
	}

	err := db.Unsubscribe(req.Email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		writeDbError(w, err, "subscription")
		return
	}

	writeJson(w, http.StatusOK, types.NewsletterResponse{Status: string(db.SubscriberUnsubscribed), Message: "You have been unsubscribed."})
}
