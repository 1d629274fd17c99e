package domain

import "context"

// PostRepository defines persistence operations for posts. Mutations on the
// likes set and the comment sequence must be single atomic store operations,
// never a read-modify-write in the caller.
type PostRepository interface {
	// CreatePost inserts a new post into the store.
	CreatePost(ctx context.Context, post *Post) error

	// GetPost retrieves a post with its likes and comments.
	// Returns ErrNotFound if the id does not resolve.
	GetPost(ctx context.Context, id string) (*Post, error)

	// UpdatePost applies the non-nil fields and returns the updated post.
	// Returns ErrNotFound if the id does not resolve.
	UpdatePost(ctx context.Context, id string, content, photo *string) (*Post, error)

	// DeletePost removes a post and its likes and comments.
	// Returns ErrNotFound if the id does not resolve.
	DeletePost(ctx context.Context, id string) error

	// ListPosts retrieves posts ordered by createdAt descending (ties broken
	// by id descending), skipping offset posts and returning at most limit.
	ListPosts(ctx context.Context, offset, limit int) ([]Post, error)

	// ListAllPosts retrieves every post in the same order as ListPosts.
	ListAllPosts(ctx context.Context) ([]Post, error)

	// AddLike atomically adds accountID to the post's like set. It reports
	// false with no error when the account already likes the post, and
	// ErrNotFound when the post does not exist. Two concurrent calls for the
	// same pair must never produce a duplicate.
	AddLike(ctx context.Context, postID, accountID string) (added bool, err error)

	// RemoveLike atomically removes accountID from the post's like set.
	// Removing a non-member is not an error.
	RemoveLike(ctx context.Context, postID, accountID string) error

	// AppendComment atomically appends the comment to the post's sequence
	// and returns it as stored. Returns ErrNotFound if the post does not
	// exist.
	AppendComment(ctx context.Context, postID string, comment Comment) (*Comment, error)
}

// AccountUpdate carries the mutable profile fields; nil means leave as is.
type AccountUpdate struct {
	Username        *string
	ProfilePicture  *string
	BackgroundImage *string
	Bio             *string
	Info            *AccountInfo
}

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// CreateAccount inserts a new account.
	CreateAccount(ctx context.Context, account *Account) error

	// GetAccount retrieves an account by id. Returns ErrNotFound if the id
	// does not resolve.
	GetAccount(ctx context.Context, id string) (*Account, error)

	// GetAccountByUsername retrieves an account by username.
	// Returns ErrNotFound when no account has the username.
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)

	// EmailExists reports whether an account is registered with the email.
	EmailExists(ctx context.Context, email string) (bool, error)

	// UpdateAccount applies the update and returns the updated account.
	// Returns ErrNotFound if the id does not resolve.
	UpdateAccount(ctx context.Context, id string, update AccountUpdate) (*Account, error)
}

// Authorizer decides whether a request's session token permits acting on a
// resource owned by claimedOwnerID. It returns ErrNoToken, ErrInvalidToken,
// ErrNotOwner, or nil for allow.
type Authorizer interface {
	Authorize(token, claimedOwnerID string) error
}

// TokenCodec issues and verifies session tokens binding a caller to an
// account id. Verify returns the subject account id, or ErrInvalidToken.
type TokenCodec interface {
	Issue(accountID string) (string, error)
	Verify(token string) (string, error)
}

// PasswordHasher hashes credentials at registration and compares them at
// signin. Compare returns a non-nil error on mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// PhotoValidator gates base64-encoded photos: recognized image format and
// within the size ceiling. Returns ErrValidation on rejection.
type PhotoValidator interface {
	Validate(photo string) error
}
