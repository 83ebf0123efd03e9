package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCommentRepliesMustShareThePost(t *testing.T) {
	setupTestDb(t)

	root := &Comment{PostSlug: "hello", AuthorName: "Ana", Body: "first"}
	require.NoError(t, CreateComment(root))
	assert.Equal(t, ModerationPending, root.Status)

	err := CreateComment(&Comment{PostSlug: "other", ParentId: strPtr(root.Id), AuthorName: "Bo", Body: "wrong post"})
	assert.ErrorIs(t, err, ErrInvalidParent)

	err = CreateComment(&Comment{PostSlug: "hello", ParentId: strPtr("missing"), AuthorName: "Bo", Body: "no parent"})
	assert.ErrorIs(t, err, ErrInvalidParent)

	reply := &Comment{PostSlug: "hello", ParentId: strPtr(root.Id), AuthorName: "Bo", Body: "reply"}
	require.NoError(t, CreateComment(reply))

	empty := &Comment{PostSlug: "hello", ParentId: strPtr(""), AuthorName: "Cy", Body: "top level"}
	require.NoError(t, CreateComment(empty))
	assert.Nil(t, empty.ParentId)
}

func TestListApprovedCommentsBuildsTree(t *testing.T) {
	setupTestDb(t)

	root := &Comment{PostSlug: "p", AuthorName: "A", Body: "root"}
	require.NoError(t, CreateComment(root))
	reply := &Comment{PostSlug: "p", ParentId: strPtr(root.Id), AuthorName: "B", Body: "reply"}
	require.NoError(t, CreateComment(reply))
	pending := &Comment{PostSlug: "p", AuthorName: "C", Body: "pending"}
	require.NoError(t, CreateComment(pending))

	threads, err := ListApprovedComments("p")
	require.NoError(t, err)
	assert.Empty(t, threads, "nothing approved yet")

	require.NoError(t, SetCommentStatus(root.Id, ModerationApproved))
	require.NoError(t, SetCommentStatus(reply.Id, ModerationApproved))

	threads, err = ListApprovedComments("p")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "root", threads[0].Body)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, "reply", threads[0].Replies[0].Body)

	assert.Error(t, SetCommentStatus(root.Id, "spam"))
	assert.ErrorIs(t, SetCommentStatus("missing", ModerationRejected), ErrNotFound)

	count, err := CountCommentsByStatus(ModerationPending)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteCommentCascadesToReplies(t *testing.T) {
	setupTestDb(t)

	root := &Comment{PostSlug: "p", AuthorName: "A", Body: "root"}
	require.NoError(t, CreateComment(root))
	reply := &Comment{PostSlug: "p", ParentId: strPtr(root.Id), AuthorName: "B", Body: "reply"}
	require.NoError(t, CreateComment(reply))

	require.NoError(t, DeleteComment(root.Id))

	_, err := GetComment(reply.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildCommentTreeDropsOrphans(t *testing.T) {
	comments := []*Comment{
		{Id: "1", Body: "root"},
		{Id: "2", ParentId: strPtr("hidden"), Body: "orphan"},
		{Id: "3", ParentId: strPtr("1"), Body: "child"},
		{Id: "4", ParentId: strPtr("3"), Body: "grandchild"},
	}

	tree := BuildCommentTree(comments)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, "grandchild", tree[0].Replies[0].Replies[0].Body)
}
