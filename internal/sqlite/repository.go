// Package sqlite implements the domain repositories over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mwalczyk/socialfeed/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id               TEXT PRIMARY KEY,
	username         TEXT NOT NULL,
	email            TEXT NOT NULL UNIQUE,
	password_hash    TEXT NOT NULL,
	profile_picture  TEXT NOT NULL DEFAULT 'default',
	background_image TEXT NOT NULL DEFAULT 'default',
	bio              TEXT NOT NULL DEFAULT '',
	phone_number     TEXT NOT NULL DEFAULT '',
	country          TEXT NOT NULL DEFAULT '',
	city             TEXT NOT NULL DEFAULT '',
	workplace        TEXT NOT NULL DEFAULT '',
	school           TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	author_id  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	content    TEXT NOT NULL,
	photo      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS likes (
	post_id    TEXT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
	account_id TEXT NOT NULL,
	PRIMARY KEY (post_id, account_id)
);

CREATE TABLE IF NOT EXISTS comments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id    TEXT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
	author_id  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	content    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments (post_id, id);
`

// Repository implements domain.PostRepository and domain.AccountRepository
// using SQLite. The like set and the comment sequence live in child tables,
// so set-add and append are single statements and the engine's per-statement
// atomicity rules out duplicate likes under concurrent writers.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (and if needed creates) the SQLite database at path,
// applies the schema, and returns a new Repository. The caller should call
// Close when the repository is no longer needed.
func NewRepository(path string) (*Repository, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// CreatePost inserts a new post.
func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (id, author_id, created_at, content, photo)
		VALUES (?, ?, ?, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.CreatedAt.UnixNano(),
		post.Content,
		post.Photo,
	)
	return err
}

// GetPost retrieves a post with its likes and comments.
func (r *Repository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var (
		p         domain.Post
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, author_id, created_at, content, photo
		FROM posts WHERE id = ?`, id,
	).Scan(&p.ID, &p.AuthorID, &createdAt, &p.Content, &p.Photo)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query post: %w", err)
	}
	p.CreatedAt = time.Unix(0, createdAt).UTC()

	if err := r.hydrate(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePost applies the non-nil fields and returns the updated post.
func (r *Repository) UpdatePost(ctx context.Context, id string, content, photo *string) (*domain.Post, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts
		SET content = COALESCE(?, content), photo = COALESCE(?, photo)
		WHERE id = ?`,
		nullable(content), nullable(photo), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetPost(ctx, id)
}

// DeletePost removes a post; likes and comments go with it via cascade.
func (r *Repository) DeletePost(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPosts retrieves one page of posts ordered by created_at descending
// with ties broken by id descending.
func (r *Repository) ListPosts(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, author_id, created_at, content, photo
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query posts (limit=%d, offset=%d): %w", limit, offset, err)
	}
	return r.collectPosts(ctx, rows)
}

// ListAllPosts retrieves every post in feed order.
func (r *Repository) ListAllPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, author_id, created_at, content, photo
		FROM posts
		ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query all posts: %w", err)
	}
	return r.collectPosts(ctx, rows)
}

// AddLike adds accountID to the post's like set in a single statement. The
// insert only fires when the post exists and the pair is new, so concurrent
// duplicates are impossible; the follow-up read only classifies a zero-row
// result as "unknown post" versus "already liked".
func (r *Repository) AddLike(ctx context.Context, postID, accountID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO likes (post_id, account_id)
		SELECT ?1, ?2 WHERE EXISTS (SELECT 1 FROM posts WHERE id = ?1)
		ON CONFLICT (post_id, account_id) DO NOTHING`,
		postID, accountID,
	)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = ?)`, postID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return false, nil
}

// RemoveLike removes accountID from the post's like set. Removing a
// non-member is a no-op.
func (r *Repository) RemoveLike(ctx context.Context, postID, accountID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM likes WHERE post_id = ? AND account_id = ?`,
		postID, accountID,
	)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

// AppendComment appends the comment in a single statement; append order is
// the autoincrement id order.
func (r *Repository) AppendComment(ctx context.Context, postID string, comment domain.Comment) (*domain.Comment, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO comments (post_id, author_id, created_at, content)
		SELECT ?1, ?2, ?3, ?4 WHERE EXISTS (SELECT 1 FROM posts WHERE id = ?1)`,
		postID, comment.AuthorID, comment.CreatedAt.UnixNano(), comment.Content,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return &comment, nil
}

func (r *Repository) collectPosts(ctx context.Context, rows *sql.Rows) ([]domain.Post, error) {
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var (
			p         domain.Post
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.AuthorID, &createdAt, &p.Content, &p.Photo); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.CreatedAt = time.Unix(0, createdAt).UTC()
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	for i := range posts {
		if err := r.hydrate(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// hydrate loads the post's like set and comment sequence.
func (r *Repository) hydrate(ctx context.Context, p *domain.Post) error {
	likeRows, err := r.db.QueryContext(ctx,
		`SELECT account_id FROM likes WHERE post_id = ?`, p.ID,
	)
	if err != nil {
		return fmt.Errorf("query likes: %w", err)
	}
	defer likeRows.Close()

	p.Likes = []string{}
	for likeRows.Next() {
		var accountID string
		if err := likeRows.Scan(&accountID); err != nil {
			return fmt.Errorf("scan like: %w", err)
		}
		p.Likes = append(p.Likes, accountID)
	}
	if err := likeRows.Err(); err != nil {
		return fmt.Errorf("iterate likes: %w", err)
	}

	commentRows, err := r.db.QueryContext(ctx, `
		SELECT author_id, created_at, content
		FROM comments WHERE post_id = ?
		ORDER BY id`, p.ID,
	)
	if err != nil {
		return fmt.Errorf("query comments: %w", err)
	}
	defer commentRows.Close()

	p.Comments = []domain.Comment{}
	for commentRows.Next() {
		var (
			c         domain.Comment
			createdAt int64
		)
		if err := commentRows.Scan(&c.AuthorID, &createdAt, &c.Content); err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = time.Unix(0, createdAt).UTC()
		p.Comments = append(p.Comments, c)
	}
	if err := commentRows.Err(); err != nil {
		return fmt.Errorf("iterate comments: %w", err)
	}
	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
