package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func GetUser(userId string) (*User, error) {
	var user User
	err := Conn.Get(&user, Conn.Rebind("SELECT * FROM users WHERE id = ?"), userId)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("error getting user: %v", err)
	}

	return &user, nil
}

func GetUserByEmail(email string) (*User, error) {
	var user User
	err := Conn.Get(&user, Conn.Rebind("SELECT * FROM users WHERE email = ?"), strings.ToLower(email))

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("error getting user: %v", err)
	}

	return &user, nil
}

func CreateUser(name, email, password string, isAdmin bool, tx *sqlx.Tx) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email: %v", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %v", err)
	}

	user := User{
		Id:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		CreatedAt:    now(),
	}
	user.UpdatedAt = user.CreatedAt

	_, err = tx.NamedExec(`INSERT INTO users (id, email, name, password_hash, is_admin, created_at, updated_at)
	VALUES (:id, :email, :name, :password_hash, :is_admin, :created_at, :updated_at)`, &user)

	if err != nil {
		if IsNonUniqueErr(err) {
			return nil, fmt.Errorf("user already exists for email %v: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}

	return &user, nil
}

// CheckPassword returns the user when the credentials match, nil otherwise.
func CheckPassword(email, password string) (*User, error) {
	user, err := GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, nil
	}

	return user, nil
}

func CountUsers() (int, error) {
	var count int
	err := Conn.Get(&count, "SELECT COUNT(*) FROM users")
	if err != nil {
		return 0, fmt.Errorf("error counting users: %v", err)
	}
	return count, nil
}
