package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FeedPageSize is the number of posts in one feed window.
const FeedPageSize = 8

// similarityThreshold is the minimum Dice bigram score for a fuzzy match.
const similarityThreshold = 0.75

// FeedService is the core domain service for posts: it serves the ordered,
// paginated, optionally searched feed and applies engagement mutations
// (likes, comments, edits, deletes) after authorization.
type FeedService struct {
	posts  PostRepository
	guard  Authorizer
	photos PhotoValidator
	logger *slog.Logger
	now    func() time.Time
}

// NewFeedService creates a FeedService over the given collaborators.
func NewFeedService(posts PostRepository, guard Authorizer, photos PhotoValidator, logger *slog.Logger) *FeedService {
	return &FeedService{
		posts:  posts,
		guard:  guard,
		photos: photos,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetFeed returns one feed window. start is 1-based: the window skips
// (start-1) posts and holds at most FeedPageSize items. Posts are ordered by
// createdAt descending, ties broken by id, and the ordering is unaffected by
// the query. A window past the end of the data is empty, not an error.
//
// With a non-empty query the entire ordered sequence is realized and
// filtered to posts whose lowercased content contains the lowercased query
// as a substring, or whose Dice bigram similarity against it exceeds 0.75.
// Matches keep their recency order; they are never re-sorted by score.
func (s *FeedService) GetFeed(ctx context.Context, start int, query string) ([]Post, error) {
	if start < 1 {
		return nil, fmt.Errorf("%w: start must be a positive integer", ErrValidation)
	}

	if query == "" {
		posts, err := s.posts.ListPosts(ctx, start-1, FeedPageSize)
		if err != nil {
			s.logger.Error("feed page query failed", "start", start, "error", err)
			return nil, fmt.Errorf("%w: list posts: %w", ErrRetrievalFailed, err)
		}
		return posts, nil
	}

	all, err := s.posts.ListAllPosts(ctx)
	if err != nil {
		s.logger.Error("feed search query failed", "start", start, "query", query, "error", err)
		return nil, fmt.Errorf("%w: list posts: %w", ErrRetrievalFailed, err)
	}

	lowerQuery := strings.ToLower(query)
	matched := make([]Post, 0, FeedPageSize)
	for _, p := range all {
		lowerContent := strings.ToLower(p.Content)
		if strings.Contains(lowerContent, lowerQuery) ||
			TextSimilarity(lowerContent, lowerQuery) > similarityThreshold {
			matched = append(matched, p)
		}
	}

	return window(matched, start), nil
}

// window applies the feed pagination arithmetic: skip (start-1) items,
// return up to FeedPageSize.
func window(posts []Post, start int) []Post {
	lo := start - 1
	if lo >= len(posts) {
		return []Post{}
	}
	hi := lo + FeedPageSize
	if hi > len(posts) {
		hi = len(posts)
	}
	return posts[lo:hi]
}

// CreatePost stores a new post authored by authorID. The session token must
// belong to authorID.
func (s *FeedService) CreatePost(ctx context.Context, token, authorID, content, photo string) (*Post, error) {
	if err := s.guard.Authorize(token, authorID); err != nil {
		return nil, err
	}

	validated, err := NewPostContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.photos.Validate(photo); err != nil {
		return nil, err
	}

	post := &Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		CreatedAt: s.now(),
		Content:   validated.String(),
		Photo:     photo,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.logger.Error("create post failed", "author_id", authorID, "error", err)
		return nil, fmt.Errorf("%w: create post: %w", ErrStoreFailed, err)
	}
	return post, nil
}

// UpdatePost edits a post's content and/or photo. The owner is looked up
// from the persisted post, never taken from the caller, and authorization
// happens before the store write.
func (s *FeedService) UpdatePost(ctx context.Context, token, postID string, content, photo *string) (*Post, error) {
	if _, err := s.lookupAndAuthorize(ctx, token, postID); err != nil {
		return nil, err
	}

	if content != nil {
		validated, err := NewPostContent(*content)
		if err != nil {
			return nil, err
		}
		v := validated.String()
		content = &v
	}
	if photo != nil {
		if err := s.photos.Validate(*photo); err != nil {
			return nil, err
		}
	}

	updated, err := s.posts.UpdatePost(ctx, postID, content, photo)
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		s.logger.Error("update post failed", "post_id", postID, "error", err)
		return nil, fmt.Errorf("%w: update post: %w", ErrStoreFailed, err)
	}
	return updated, nil
}

// DeletePost removes a post after look-up-then-authorize. Deleting an id
// that no longer resolves returns ErrNotFound.
func (s *FeedService) DeletePost(ctx context.Context, token, postID string) error {
	if _, err := s.lookupAndAuthorize(ctx, token, postID); err != nil {
		return err
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		if isDomainErr(err) {
			return err
		}
		s.logger.Error("delete post failed", "post_id", postID, "error", err)
		return fmt.Errorf("%w: delete post: %w", ErrStoreFailed, err)
	}
	return nil
}

// AddComment appends a comment to a post and returns it as stored. The
// session token must belong to the comment's stated author.
func (s *FeedService) AddComment(ctx context.Context, token, postID, authorID, content string) (*Comment, error) {
	if err := s.guard.Authorize(token, authorID); err != nil {
		return nil, err
	}

	validated, err := NewCommentContent(content)
	if err != nil {
		return nil, err
	}

	comment := Comment{
		AuthorID:  authorID,
		CreatedAt: s.now(),
		Content:   validated.String(),
	}
	added, err := s.posts.AppendComment(ctx, postID, comment)
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		s.logger.Error("append comment failed", "post_id", postID, "error", err)
		return nil, fmt.Errorf("%w: append comment: %w", ErrStoreFailed, err)
	}
	return added, nil
}

// AddLike adds accountID to the post's like set. A second like by the same
// account is rejected with ErrAlreadyLiked and performs no mutation. The
// add itself is a single atomic store operation, so two concurrent likes
// cannot both land.
func (s *FeedService) AddLike(ctx context.Context, token, postID, accountID string) error {
	if err := s.guard.Authorize(token, accountID); err != nil {
		return err
	}

	added, err := s.posts.AddLike(ctx, postID, accountID)
	if err != nil {
		if isDomainErr(err) {
			return err
		}
		s.logger.Error("add like failed", "post_id", postID, "error", err)
		return fmt.Errorf("%w: add like: %w", ErrStoreFailed, err)
	}
	if !added {
		return ErrAlreadyLiked
	}
	return nil
}

// RemoveLike removes accountID from the post's like set. Removing a
// non-member succeeds silently.
func (s *FeedService) RemoveLike(ctx context.Context, token, postID, accountID string) error {
	if err := s.guard.Authorize(token, accountID); err != nil {
		return err
	}

	if err := s.posts.RemoveLike(ctx, postID, accountID); err != nil {
		if isDomainErr(err) {
			return err
		}
		s.logger.Error("remove like failed", "post_id", postID, "error", err)
		return fmt.Errorf("%w: remove like: %w", ErrStoreFailed, err)
	}
	return nil
}

// lookupAndAuthorize fetches the persisted post and authorizes the token
// against its stored author id. Trusting a caller-supplied owner id here
// would let anyone delete or edit someone else's post.
func (s *FeedService) lookupAndAuthorize(ctx context.Context, token, postID string) (*Post, error) {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		s.logger.Error("post lookup failed", "post_id", postID, "error", err)
		return nil, fmt.Errorf("%w: get post: %w", ErrStoreFailed, err)
	}
	if err := s.guard.Authorize(token, post.AuthorID); err != nil {
		return nil, err
	}
	return post, nil
}
