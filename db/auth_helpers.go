package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const tokenExpirationDays = 30

func CreateAuthToken(userId string) (token, id string, err error) {
	token, hash := newToken()
	id = uuid.New().String()

	_, err = Conn.Exec(Conn.Rebind("INSERT INTO auth_tokens (id, user_id, token_hash, created_at) VALUES (?, ?, ?, ?)"), id, userId, hash, now())

	if err != nil {
		return "", "", fmt.Errorf("error creating auth token: %v", err)
	}

	return token, id, nil
}

func ValidateAuthToken(token string) (*AuthToken, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, errors.New("invalid token")
	}

	var authToken AuthToken
	err := Conn.Get(&authToken, Conn.Rebind("SELECT * FROM auth_tokens WHERE token_hash = ? AND created_at > ? AND deleted_at IS NULL"), hashToken(token), now().AddDate(0, 0, -tokenExpirationDays))

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("invalid token")
		}

		return nil, fmt.Errorf("error validating token: %v", err)
	}

	return &authToken, nil
}

func DeleteAuthToken(tokenId string) error {
	_, err := Conn.Exec(Conn.Rebind("UPDATE auth_tokens SET deleted_at = ? WHERE id = ?"), now(), tokenId)
	if err != nil {
		return fmt.Errorf("error deleting auth token: %v", err)
	}
	return nil
}

func DeleteExpiredAuthTokens() (int64, error) {
	res, err := Conn.Exec(Conn.Rebind("DELETE FROM auth_tokens WHERE created_at < ? OR deleted_at IS NOT NULL"), now().Add(-tokenExpirationDays*24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("error deleting expired auth tokens: %v", err)
	}
	return res.RowsAffected()
}

// newToken returns a random token and the hash that gets stored.
func newToken() (token, hash string) {
	token = uuid.New().String()
	return token, hashToken(token)
}

func hashToken(token string) string {
	hashBytes := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hashBytes[:])
}
