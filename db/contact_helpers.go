package db

import (
	"fmt"

	"github.com/google/uuid"
)

func CreateContactSubmission(sub *ContactSubmission) error {
	sub.Id = uuid.New().String()
	sub.CreatedAt = now()
	if sub.Status == "" {
		sub.Status = ContactStatusNew
	}

	_, err := Conn.NamedExec(`INSERT INTO contact_submissions (id, name, email, subject, message, ip_hash, user_agent, status, created_at)
	VALUES (:id, :name, :email, :subject, :message, :ip_hash, :user_agent, :status, :created_at)`, sub)

	if err != nil {
		return fmt.Errorf("error creating contact submission: %v", err)
	}

	return nil
}

// ListContactSubmissions lists newest first. An empty status lists all.
func ListContactSubmissions(status ContactStatus) ([]*ContactSubmission, error) {
	subs := []*ContactSubmission{}

	var err error
	if status == "" {
		err = Conn.Select(&subs, "SELECT * FROM contact_submissions ORDER BY created_at DESC")
	} else {
		err = Conn.Select(&subs, Conn.Rebind("SELECT * FROM contact_submissions WHERE status = ? ORDER BY created_at DESC"), status)
	}

	if err != nil {
		return nil, fmt.Errorf("error listing contact submissions: %v", err)
	}

	return subs, nil
}

func GetContactSubmission(id string) (*ContactSubmission, error) {
	var sub ContactSubmission
	err := Conn.Get(&sub, Conn.Rebind("SELECT * FROM contact_submissions WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("error getting contact submission: %w", notFoundIfNoRows(err, "contact submission"))
	}
	return &sub, nil
}

func UpdateContactStatus(id string, status ContactStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid contact status: %q", status)
	}

	res, err := Conn.Exec(Conn.Rebind("UPDATE contact_submissions SET status = ? WHERE id = ?"), status, id)
	if err != nil {
		return fmt.Errorf("error updating contact submission: %v", err)
	}
	return checkAffected(res, "contact submission")
}

func DeleteContactSubmission(id string) error {
	res, err := Conn.Exec(Conn.Rebind("DELETE FROM contact_submissions WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("error deleting contact submission: %v", err)
	}
	return checkAffected(res, "contact submission")
}

func CountContactSubmissions(status ContactStatus) (int, error) {
	var count int
	err := Conn.Get(&count, Conn.Rebind("SELECT COUNT(*) FROM contact_submissions WHERE status = ?"), status)
	if err != nil {
		return 0, fmt.Errorf("error counting contact submissions: %v", err)
	}
	return count, nil
}
