package db

import (
	"fmt"

	"github.com/google/uuid"
)

func CreateGuestbookEntry(entry *GuestbookEntry) error {
	entry.Id = uuid.New().String()
	entry.CreatedAt = now()
	if entry.Status == "" {
		entry.Status = ModerationPending
	}

	_, err := Conn.NamedExec(`INSERT INTO guestbook_entries (id, name, message, website, status, ip_hash, created_at)
	VALUES (:id, :name, :message, :website, :status, :ip_hash, :created_at)`, entry)

	if err != nil {
		return fmt.Errorf("error creating guestbook entry: %v", err)
	}
	return nil
}

// ListGuestbookEntries lists newest first. An empty status lists all; limit <= 0 means no limit.
func ListGuestbookEntries(status ModerationStatus, limit int) ([]*GuestbookEntry, error) {
	entries := []*GuestbookEntry{}

	query := "SELECT * FROM guestbook_entries"
	var args []interface{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	err := Conn.Select(&entries, Conn.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error listing guestbook entries: %v", err)
	}
	return entries, nil
}

func SetGuestbookEntryStatus(id string, status ModerationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid moderation status: %q", status)
	}

	res, err := Conn.Exec(Conn.Rebind("UPDATE guestbook_entries SET status = ? WHERE id = ?"), status, id)
	if err != nil {
		return fmt.Errorf("error updating guestbook entry status: %v", err)
	}
	return checkAffected(res, "guestbook entry")
}

func DeleteGuestbookEntry(id string) error {
	res, err := Conn.Exec(Conn.Rebind("DELETE FROM guestbook_entries WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("error deleting guestbook entry: %v", err)
	}
	return checkAffected(res, "guestbook entry")
}
