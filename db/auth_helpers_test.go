package db

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTokenLifecycle(t *testing.T) {
	setupTestDb(t)

	var user *User
	mustTx(t, func(tx *sqlx.Tx) error {
		var err error
		user, err = CreateUser("Admin", "Admin@Example.com", "correct horse", true, tx)
		return err
	})
	assert.Equal(t, "admin@example.com", user.Email)

	found, err := CheckPassword("admin@example.com", "correct horse")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsAdmin)

	bad, err := CheckPassword("admin@example.com", "wrong")
	require.NoError(t, err)
	assert.Nil(t, bad)

	nobody, err := CheckPassword("nobody@example.com", "x")
	require.NoError(t, err)
	assert.Nil(t, nobody)

	token, tokenId, err := CreateAuthToken(user.Id)
	require.NoError(t, err)

	authToken, err := ValidateAuthToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.Id, authToken.UserId)

	_, err = ValidateAuthToken("not-a-uuid")
	assert.Error(t, err)

	require.NoError(t, DeleteAuthToken(tokenId))
	_, err = ValidateAuthToken(token)
	assert.Error(t, err)

	removed, err := DeleteExpiredAuthTokens()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	setupTestDb(t)

	mustTx(t, func(tx *sqlx.Tx) error {
		_, err := CreateUser("A", "a@example.com", "pw", true, tx)
		return err
	})

	err := WithTx(t.Context(), "dup user", func(tx *sqlx.Tx) error {
		_, err := CreateUser("A", "A@example.com", "pw", true, tx)
		return err
	})
	assert.ErrorIs(t, err, ErrConflict)

	count, err := CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
