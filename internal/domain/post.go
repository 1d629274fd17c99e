package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Bounds for user-supplied text, measured in runes.
const (
	minPostContentLen = 2
	maxPostContentLen = 280

	minCommentContentLen = 2
	maxCommentContentLen = 140
)

// PostContent is post body text whose length has been validated at
// construction. The zero value is invalid; always go through NewPostContent.
type PostContent string

// NewPostContent validates the post content bounds (2-280 runes).
func NewPostContent(s string) (PostContent, error) {
	n := utf8.RuneCountInString(s)
	if n < minPostContentLen || n > maxPostContentLen {
		return "", fmt.Errorf("%w: post content must be %d-%d characters, got %d",
			ErrValidation, minPostContentLen, maxPostContentLen, n)
	}
	return PostContent(s), nil
}

func (c PostContent) String() string { return string(c) }

// CommentContent is comment body text validated at construction (2-140 runes).
type CommentContent string

// NewCommentContent validates the comment content bounds.
func NewCommentContent(s string) (CommentContent, error) {
	n := utf8.RuneCountInString(s)
	if n < minCommentContentLen || n > maxCommentContentLen {
		return "", fmt.Errorf("%w: comment content must be %d-%d characters, got %d",
			ErrValidation, minCommentContentLen, maxCommentContentLen, n)
	}
	return CommentContent(s), nil
}

func (c CommentContent) String() string { return string(c) }

// Post is a stored feed post. Likes is semantically a set of account IDs and
// Comments is an append-only sequence in display order.
type Post struct {
	// ID is the stable post identifier.
	ID string

	// AuthorID references the authoring account. Not enforced as a foreign
	// key against accounts; checked at authorization time.
	AuthorID string

	// CreatedAt is assigned at creation and immutable thereafter.
	CreatedAt time.Time

	// Content is the post body text.
	Content string

	// Photo is an optional base64-encoded image, empty when absent.
	Photo string

	// Likes holds the account IDs that like this post, no duplicates.
	Likes []string

	// Comments holds the post's comments in append order.
	Comments []Comment
}

// Comment is one entry in a post's comment sequence. Comments have no
// independent identifier; they are addressed by position within the post.
type Comment struct {
	AuthorID  string
	CreatedAt time.Time
	Content   string
}
