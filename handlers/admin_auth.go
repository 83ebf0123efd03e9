package handlers

import (
	"net/http"
	"strings"

	"portfolio-server/db"
	"portfolio-server/types"

	"go.uber.org/zap"
)

func SignInHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for SignInHandler")

	var req types.SignInRequest
	if !readJson(w, r, &req) {
		return
	}

	v := newValidator()
	v.email("email", req.Email)
	v.required("password", req.Password)
	if !v.ok() {
		writeValidationError(w, v.fields)
		return
	}

	if err := dbAvailable(); err != nil {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeUnavailable, Status: http.StatusServiceUnavailable, Msg: "database unavailable"})
		return
	}

	user, err := db.CheckPassword(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeDbError(w, err, "user")
		return
	}

	if user == nil || !user.IsAdmin {
		zap.L().Info("failed admin sign in", zap.String("ip", clientIp(r)))
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeInvalidToken, Status: http.StatusUnauthorized, Msg: "invalid email or password"})
		return
	}

	token, _, err := db.CreateAuthToken(user.Id)
	if err != nil {
		writeDbError(w, err, "auth token")
		return
	}

	zap.L().Info("Successfully signed in", zap.String("userId", user.Id))

	writeJson(w, http.StatusOK, types.SignInResponse{Token: token, UserId: user.Id, Email: user.Email, Name: user.Name})
}

func SignOutHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for SignOutHandler")

	auth := authenticateAdmin(w, r)
	if auth == nil {
		return
	}

	if err := db.DeleteAuthToken(auth.TokenId); err != nil {
		writeDbError(w, err, "auth token")
		return
	}

	zap.L().Info("Successfully signed out", zap.String("userId", auth.User.Id))

	w.WriteHeader(http.StatusNoContent)
}
