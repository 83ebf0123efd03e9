package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var ErrInvalidConfirmToken = errors.New("invalid or expired confirmation token")

// Subscribe creates or refreshes a pending subscription and returns the raw confirmation
// token to email. Already-confirmed addresses get an empty token and no state change.
func Subscribe(ctx context.Context, email string) (*NewsletterSubscriber, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var sub NewsletterSubscriber
	var token string

	err := WithTx(ctx, "newsletter subscribe", func(tx *sqlx.Tx) error {
		err := tx.Get(&sub, tx.Rebind("SELECT * FROM newsletter_subscribers WHERE email = ?"), email)

		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("error getting subscriber: %v", err)
		}

		if err == nil && sub.Status == SubscriberConfirmed {
			return nil
		}

		var tokenHash string
		token, tokenHash = newToken()

		if err == sql.ErrNoRows {
			sub = NewsletterSubscriber{
				Id:               uuid.New().String(),
				Email:            email,
				Status:           SubscriberPending,
				ConfirmTokenHash: tokenHash,
				CreatedAt:        now(),
			}
			_, err = tx.NamedExec(`INSERT INTO newsletter_subscribers (id, email, status, confirm_token_hash, created_at, confirmed_at)
			VALUES (:id, :email, :status, :confirm_token_hash, :created_at, :confirmed_at)`, &sub)
			if err != nil {
				return fmt.Errorf("error creating subscriber: %v", err)
			}
			return nil
		}

		sub.Status = SubscriberPending
		sub.ConfirmTokenHash = tokenHash
		sub.ConfirmedAt = nil
		_, err = tx.Exec(tx.Rebind("UPDATE newsletter_subscribers SET status = ?, confirm_token_hash = ?, confirmed_at = NULL WHERE id = ?"), sub.Status, tokenHash, sub.Id)
		if err != nil {
			return fmt.Errorf("error refreshing subscriber: %v", err)
		}
		return nil
	})

	if err != nil {
		return nil, "", err
	}

	return &sub, token, nil
}

func ConfirmSubscription(token string) (*NewsletterSubscriber, error) {
	if token == "" {
		return nil, ErrInvalidConfirmToken
	}
	tokenHash := hashToken(token)

	var sub NewsletterSubscriber
	err := Conn.Get(&sub, Conn.Rebind("SELECT * FROM newsletter_subscribers WHERE confirm_token_hash = ? AND status = ?"), tokenHash, SubscriberPending)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidConfirmToken
		}
		return nil, fmt.Errorf("error getting subscriber by token: %v", err)
	}

	confirmedAt := now()
	_, err = Conn.Exec(Conn.Rebind("UPDATE newsletter_subscribers SET status = ?, confirm_token_hash = '', confirmed_at = ? WHERE id = ?"), SubscriberConfirmed, confirmedAt, sub.Id)
	if err != nil {
		return nil, fmt.Errorf("error confirming subscriber: %v", err)
	}

	sub.Status = SubscriberConfirmed
	sub.ConfirmTokenHash = ""
	sub.ConfirmedAt = &confirmedAt

	return &sub, nil
}

func Unsubscribe(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	res, err := Conn.Exec(Conn.Rebind("UPDATE newsletter_subscribers SET status = ?, confirm_token_hash = '' WHERE email = ?"), SubscriberUnsubscribed, email)
	if err != nil {
		return fmt.Errorf("error unsubscribing: %v", err)
	}
	return checkAffected(res, "subscriber")
}

func ListSubscribers(status SubscriberStatus) ([]*NewsletterSubscriber, error) {
	subs := []*NewsletterSubscriber{}

	var err error
	if status == "" {
		err = Conn.Select(&subs, "SELECT * FROM newsletter_subscribers ORDER BY created_at DESC")
	} else {
		err = Conn.Select(&subs, Conn.Rebind("SELECT * FROM newsletter_subscribers WHERE status = ? ORDER BY created_at DESC"), status)
	}

	if err != nil {
		return nil, fmt.Errorf("error listing subscribers: %v", err)
	}
	return subs, nil
}
