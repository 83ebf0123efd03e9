package db

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrInvalidParent = errors.New("parent comment not found on this post")

// CreateComment stores a pending comment. A reply must point at a comment on the same post.
func CreateComment(comment *Comment) error {
	if comment.ParentId != nil && *comment.ParentId != "" {
		var count int
		err := Conn.Get(&count, Conn.Rebind("SELECT COUNT(*) FROM comments WHERE id = ? AND post_slug = ?"), *comment.ParentId, comment.PostSlug)
		if err != nil {
			return fmt.Errorf("error checking parent comment: %v", err)
		}
		if count == 0 {
			return ErrInvalidParent
		}
	} else {
		comment.ParentId = nil
	}

	comment.Id = uuid.New().String()
	comment.CreatedAt = now()
	if comment.Status == "" {
		comment.Status = ModerationPending
	}

	_, err := Conn.NamedExec(`INSERT INTO comments (id, post_slug, parent_id, author_name, author_email, body, body_html, status, ip_hash, created_at)
	VALUES (:id, :post_slug, :parent_id, :author_name, :author_email, :body, :body_html, :status, :ip_hash, :created_at)`, comment)

	if err != nil {
		return fmt.Errorf("error creating comment: %v", err)
	}

	return nil
}

func GetComment(id string) (*Comment, error) {
	var comment Comment
	err := Conn.Get(&comment, Conn.Rebind("SELECT * FROM comments WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("error getting comment: %w", notFoundIfNoRows(err, "comment"))
	}
	return &comment, nil
}

// ListApprovedComments returns the approved comments on a post as a reply tree,
// oldest first. Replies whose parent isn't approved are hidden with it.
func ListApprovedComments(slug string) ([]*CommentThread, error) {
	comments := []*Comment{}
	err := Conn.Select(&comments, Conn.Rebind("SELECT * FROM comments WHERE post_slug = ? AND status = ? ORDER BY created_at ASC"), slug, ModerationApproved)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %v", err)
	}

	return BuildCommentTree(comments), nil
}

func BuildCommentTree(comments []*Comment) []*CommentThread {
	byId := make(map[string]*CommentThread, len(comments))
	for _, c := range comments {
		byId[c.Id] = &CommentThread{Comment: c, Replies: []*CommentThread{}}
	}

	roots := []*CommentThread{}
	for _, c := range comments {
		node := byId[c.Id]
		if c.ParentId == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := byId[*c.ParentId]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}

	return roots
}

// ListCommentsForModeration lists comments newest first. An empty status lists all.
func ListCommentsForModeration(status ModerationStatus) ([]*Comment, error) {
	comments := []*Comment{}

	var err error
	if status == "" {
		err = Conn.Select(&comments, "SELECT * FROM comments ORDER BY created_at DESC")
	} else {
		err = Conn.Select(&comments, Conn.Rebind("SELECT * FROM comments WHERE status = ? ORDER BY created_at DESC"), status)
	}

	if err != nil {
		return nil, fmt.Errorf("error listing comments for moderation: %v", err)
	}
	return comments, nil
}

func SetCommentStatus(id string, status ModerationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid moderation status: %q", status)
	}

	res, err := Conn.Exec(Conn.Rebind("UPDATE comments SET status = ? WHERE id = ?"), status, id)
	if err != nil {
		return fmt.Errorf("error updating comment status: %v", err)
	}
	return checkAffected(res, "comment")
}

// DeleteComment removes a comment and, through the foreign key, its replies.
func DeleteComment(id string) error {
	res, err := Conn.Exec(Conn.Rebind("DELETE FROM comments WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("error deleting comment: %v", err)
	}
	return checkAffected(res, "comment")
}

func CountCommentsByStatus(status ModerationStatus) (int, error) {
	var count int
	err := Conn.Get(&count, Conn.Rebind("SELECT COUNT(*) FROM comments WHERE status = ?"), status)
	if err != nil {
		return 0, fmt.Errorf("error counting comments: %v", err)
	}
	return count, nil
}
