package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactSubmissionLifecycle(t *testing.T) {
	setupTestDb(t)

	sub := &ContactSubmission{Name: "Dana", Email: "dana@example.com", Message: "Let's work together"}
	require.NoError(t, CreateContactSubmission(sub))
	assert.NotEmpty(t, sub.Id)
	assert.Equal(t, ContactStatusNew, sub.Status)

	newCount, err := CountContactSubmissions(ContactStatusNew)
	require.NoError(t, err)
	assert.Equal(t, 1, newCount)

	require.NoError(t, UpdateContactStatus(sub.Id, ContactStatusRead))
	assert.Error(t, UpdateContactStatus(sub.Id, "bogus"))

	read, err := ListContactSubmissions(ContactStatusRead)
	require.NoError(t, err)
	require.Len(t, read, 1)
	assert.Equal(t, "Let's work together", read[0].Message)

	got, err := GetContactSubmission(sub.Id)
	require.NoError(t, err)
	assert.Equal(t, ContactStatusRead, got.Status)

	require.NoError(t, DeleteContactSubmission(sub.Id))
	assert.ErrorIs(t, DeleteContactSubmission(sub.Id), ErrNotFound)
}

func TestGuestbookModeration(t *testing.T) {
	setupTestDb(t)

	entry := &GuestbookEntry{Name: "Eve", Message: "Nice site"}
	require.NoError(t, CreateGuestbookEntry(entry))

	approved, err := ListGuestbookEntries(ModerationApproved, 10)
	require.NoError(t, err)
	assert.Empty(t, approved)

	require.NoError(t, SetGuestbookEntryStatus(entry.Id, ModerationApproved))

	approved, err = ListGuestbookEntries(ModerationApproved, 10)
	require.NoError(t, err)
	require.Len(t, approved, 1)

	require.NoError(t, DeleteGuestbookEntry(entry.Id))
	assert.ErrorIs(t, DeleteGuestbookEntry(entry.Id), ErrNotFound)
}
