package handlers

import (
	"net/http"
	"strings"

	"portfolio-server/db"
	"portfolio-server/types"

	"go.uber.org/zap"
)

type adminAuth struct {
	User    *db.User
	TokenId string
}

// authenticateAdmin checks the bearer token and the admin flag. It writes the error
// response itself and returns nil when the request must stop.
func authenticateAdmin(w http.ResponseWriter, r *http.Request) *adminAuth {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeInvalidToken, Status: http.StatusUnauthorized, Msg: "no auth token"})
		return nil
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeInvalidToken, Status: http.StatusUnauthorized, Msg: "invalid auth header"})
		return nil
	}

	if err := dbAvailable(); err != nil {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeUnavailable, Status: http.StatusServiceUnavailable, Msg: "database unavailable"})
		return nil
	}

	authToken, err := db.ValidateAuthToken(token)
	if err != nil {
		zap.L().Debug("error validating auth token", zap.Error(err))
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeInvalidToken, Status: http.StatusUnauthorized, Msg: "invalid auth token"})
		return nil
	}

	user, err := db.GetUser(authToken.UserId)
	if err != nil || user == nil {
		zap.L().Warn("no user for auth token", zap.String("tokenId", authToken.Id), zap.Error(err))
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeInvalidToken, Status: http.StatusUnauthorized, Msg: "invalid auth token"})
		return nil
	}

	if !user.IsAdmin {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeForbidden, Status: http.StatusForbidden, Msg: "admin access required"})
		return nil
	}

	return &adminAuth{User: user, TokenId: authToken.Id}
}
