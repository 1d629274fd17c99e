package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalczyk/socialfeed/internal/auth"
	"github.com/mwalczyk/socialfeed/internal/config"
	"github.com/mwalczyk/socialfeed/internal/domain"
	"github.com/mwalczyk/socialfeed/internal/imaging"
	"github.com/mwalczyk/socialfeed/internal/sqlite"
)

// testServer wires real components over a throwaway database.
type testServer struct {
	t       *testing.T
	handler http.Handler
	tokens  *auth.TokenCodec
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo, err := sqlite.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenCodec("test-secret")
	guard := auth.NewGuard(tokens)
	photos := imaging.NewValidator()

	feed := domain.NewFeedService(repo, guard, photos, logger)
	accounts := domain.NewAccountService(repo, tokens, guard, auth.NewPasswordHasher(), photos, logger)

	cfg := &config.Config{Port: 0, SessionSecret: "test-secret"}
	server := NewServer(cfg, feed, accounts, logger)

	return &testServer{t: t, handler: server.Handler(), tokens: tokens}
}

// request performs one request; token "" sends no session cookie.
func (ts *testServer) request(method, target, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) decode(rec *httptest.ResponseRecorder, v any) {
	ts.t.Helper()
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), v))
}

// signup registers an account, signs in, and returns its id and token.
func (ts *testServer) signup(username, email string) (accountID, token string) {
	ts.t.Helper()

	rec := ts.request(http.MethodPost, "/signup", "", map[string]string{
		"username": username, "email": email, "password": "sup3rsecret",
	})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.request(http.MethodPost, "/signin", "", map[string]string{
		"username": username, "password": "sup3rsecret",
	})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		User struct {
			ID string `json:"_id"`
		} `json:"user"`
	}
	ts.decode(rec, &resp)
	require.NotEmpty(ts.t, resp.User.ID)

	cookies := rec.Result().Cookies()
	for _, c := range cookies {
		if c.Name == "token" {
			token = c.Value
		}
	}
	require.NotEmpty(ts.t, token)
	return resp.User.ID, token
}

// createPost publishes a post and returns its id.
func (ts *testServer) createPost(authorID, token, content string) string {
	ts.t.Helper()

	rec := ts.request(http.MethodPost, "/post", token, map[string]string{
		"authorId": authorID, "content": content,
	})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Post struct {
			ID string `json:"_id"`
		} `json:"post"`
	}
	ts.decode(rec, &resp)
	require.NotEmpty(ts.t, resp.Post.ID)
	return resp.Post.ID
}

func (ts *testServer) feedIDs(target string) []string {
	ts.t.Helper()

	rec := ts.request(http.MethodGet, target, "", nil)
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Posts []struct {
			ID string `json:"_id"`
		} `json:"posts"`
	}
	ts.decode(rec, &resp)

	ids := make([]string, len(resp.Posts))
	for i, p := range resp.Posts {
		ids[i] = p.ID
	}
	return ids
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodPost, "/signup", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "weak",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(http.MethodPost, "/signup", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "sup3rsecret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// duplicate email
	rec = ts.request(http.MethodPost, "/signup", "", map[string]string{
		"username": "alice2", "email": "alice@example.com", "password": "sup3rsecret",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSigninFlows(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.signup("alice", "alice@example.com")

	// token cookie resumes the session
	rec := ts.request(http.MethodPost, "/signin", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// bad password
	rec = ts.request(http.MethodPost, "/signin", "", map[string]string{
		"username": "alice", "password": "wrongpass1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// unknown username
	rec = ts.request(http.MethodPost, "/signin", "", map[string]string{
		"username": "nobody", "password": "sup3rsecret",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// neither token nor credentials
	rec = ts.request(http.MethodPost, "/signin", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSignout(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/signout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "signout must clear the session cookie")
}

func TestCreatePost_AuthRequired(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.signup("alice", "alice@example.com")
	_, bobToken := ts.signup("bob", "bob@example.com")

	// no token
	rec := ts.request(http.MethodPost, "/post", "", map[string]string{
		"authorId": aliceID, "content": "hello world",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// someone else's token
	rec = ts.request(http.MethodPost, "/post", bobToken, map[string]string{
		"authorId": aliceID, "content": "hello world",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// owner's token
	rec = ts.request(http.MethodPost, "/post", aliceToken, map[string]string{
		"authorId": aliceID, "content": "hello world",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFeedPaginationAndStartHandling(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.signup("alice", "alice@example.com")

	var ids []string
	for i := 1; i <= 10; i++ {
		ids = append(ids, ts.createPost(aliceID, aliceToken, fmt.Sprintf("post number %d", i)))
	}

	// page 1: most recent first, 8 items
	page1 := ts.feedIDs("/posts?start=1")
	require.Len(t, page1, 8)
	assert.Equal(t, ids[9], page1[0])

	// start=9 skips eight posts
	page2 := ts.feedIDs("/posts?start=9")
	require.Len(t, page2, 2)
	assert.Equal(t, ids[1], page2[0])

	// missing start defaults to page 1
	assert.Equal(t, page1, ts.feedIDs("/posts"))

	// a window past the data end is empty, not an error
	assert.Empty(t, ts.feedIDs("/posts?start=100"))

	// non-numeric or non-positive start is rejected
	rec := ts.request(http.MethodGet, "/posts?start=banana", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.request(http.MethodGet, "/posts?start=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedSearch(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.signup("alice", "alice@example.com")

	helloID := ts.createPost(aliceID, aliceToken, "hello world")
	ts.createPost(aliceID, aliceToken, "goodbye")
	ts.createPost(aliceID, aliceToken, "hell owner")

	ids := ts.feedIDs("/posts?start=1&query=hello")
	assert.Equal(t, []string{helloID}, ids)

	// case-insensitive
	ids = ts.feedIDs("/posts?start=1&query=HELLO")
	assert.Equal(t, []string{helloID}, ids)
}

func TestLikeUnlikeLifecycle(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.signup("alice", "alice@example.com")
	bobID, bobToken := ts.signup("bob", "bob@example.com")

	postID := ts.createPost(aliceID, aliceToken, "like this post")

	// like requires the actor's own token
	rec := ts.request(http.MethodPost, "/like", aliceToken, map[string]string{
		"postId": postID, "userId": bobID,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.request(http.MethodPost, "/like", bobToken, map[string]string{
		"postId": postID, "userId": bobID,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// second like is rejected as a conflict
	rec = ts.request(http.MethodPost, "/like", bobToken, map[string]string{
		"postId": postID, "userId": bobID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// unknown post
	rec = ts.request(http.MethodPost, "/like", bobToken, map[string]string{
		"postId": "missing", "userId": bobID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// unlike succeeds, and again silently
	target := "/unlike?postId=" + postID + "&userId=" + bobID
	rec = ts.request(http.MethodDelete, target, bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.request(http.MethodDelete, target, bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCommentLifecycle(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.signup("alice", "alice@example.com")
	bobID, bobToken := ts.signup("bob", "bob@example.com")

	postID := ts.createPost(aliceID, aliceToken, "comment on this")

	rec := ts.request(http.MethodPost, "/comment", bobToken, map[string]any{
		"postId": postID,
		"comment": map[string]string{
			"author_id": bobID, "content": "great post",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AddedComment struct {
			AuthorID string `json:"author_id"`
			Content  string `json:"content"`
		} `json:"addedComment"`
	}
	ts.decode(rec, &resp)
	assert.Equal(t, bobID, resp.AddedComment.AuthorID)
	assert.Equal(t, "great post", resp.AddedComment.Content)

	// out-of-bounds content
	rec = ts.request(http.MethodPost, "/comment", bobToken, map[string]any{
		"postId": postID,
		"comment": map[string]string{
			"author_id": bobID, "content": "x",
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// claiming someone else's authorship is rejected
	rec = ts.request(http.MethodPost, "/comment", bobToken, map[string]any{
		"postId": postID,
		"comment": map[string]string{
			"author_id": aliceID, "content": "spoofed",
		},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeletePost_OwnershipFromPersistedAuthor(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.signup("alice", "alice@example.com")
	_, bobToken := ts.signup("bob", "bob@example.com")

	postID := ts.createPost(aliceID, aliceToken, "alice's post")

	// bob cannot delete alice's post, whatever he claims
	rec := ts.request(http.MethodDelete, "/post?postId="+postID, bobToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, ts.feedIDs("/posts?start=1"), postID)

	// alice can
	rec = ts.request(http.MethodDelete, "/post?postId="+postID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, ts.feedIDs("/posts?start=1"), postID)

	// deleting again is NotFound
	rec = ts.request(http.MethodDelete, "/post?postId="+postID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePost(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.signup("alice", "alice@example.com")
	_, bobToken := ts.signup("bob", "bob@example.com")

	postID := ts.createPost(aliceID, aliceToken, "original content")

	rec := ts.request(http.MethodPatch, "/updatePost", bobToken, map[string]string{
		"postId": postID, "content": "hijacked",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.request(http.MethodPatch, "/updatePost", aliceToken, map[string]string{
		"postId": postID, "content": "edited content",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Post struct {
			Content string `json:"content"`
		} `json:"post"`
	}
	ts.decode(rec, &resp)
	assert.Equal(t, "edited content", resp.Post.Content)

	// nonexistent post
	rec = ts.request(http.MethodPatch, "/updatePost", aliceToken, map[string]string{
		"postId": "missing", "content": "whatever",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// out-of-bounds content never reaches the store
	rec = ts.request(http.MethodPatch, "/updatePost", aliceToken, map[string]string{
		"postId": postID, "content": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUser_WhitelistAndAuth(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.signup("alice", "alice@example.com")

	rec := ts.request(http.MethodPatch, "/updateUser", aliceToken, map[string]any{
		"userId":  aliceID,
		"updates": map[string]any{"bio": "new bio"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		User struct {
			Bio string `json:"bio"`
		} `json:"user"`
	}
	ts.decode(rec, &resp)
	assert.Equal(t, "new bio", resp.User.Bio)

	// unknown update field
	rec = ts.request(http.MethodPatch, "/updateUser", aliceToken, map[string]any{
		"userId":  aliceID,
		"updates": map[string]any{"email": "sneaky@example.com"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// no token
	rec = ts.request(http.MethodPatch, "/updateUser", "", map[string]any{
		"userId":  aliceID,
		"updates": map[string]any{"bio": "nope"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserAndImage(t *testing.T) {
	ts := newTestServer(t)
	aliceID, _ := ts.signup("alice", "alice@example.com")

	rec := ts.request(http.MethodGet, "/user?userId="+aliceID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User map[string]any `json:"user"`
	}
	ts.decode(rec, &resp)
	assert.Equal(t, "alice", resp.User["username"])
	assert.NotContains(t, resp.User, "email")
	assert.NotContains(t, resp.User, "password")

	rec = ts.request(http.MethodGet, "/image?userId="+aliceID+"&image=PROFILE", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(http.MethodGet, "/image?userId="+aliceID+"&image=SIDEWAYS", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(http.MethodGet, "/user?userId=missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
