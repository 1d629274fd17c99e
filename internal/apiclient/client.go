// Package apiclient is a minimal Go client for the social-feed HTTP API.
// It is used by cmd/seed and is handy for smoke-testing a running server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a running social-feed server.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// populated after Signin
	sessionToken string
	accountID    string
}

// NewClient creates a client for the server at baseURL, e.g.
// http://localhost:5000.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, username, email, password string) error {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	if err := c.do(ctx, http.MethodPost, "/signup", body, nil); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

// Signin authenticates and stores the session cookie for later calls.
func (c *Client) Signin(ctx context.Context, username, password string) error {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	var resp struct {
		User struct {
			ID string `json:"_id"`
		} `json:"user"`
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/signin", body)
	if err != nil {
		return fmt.Errorf("signin: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("signin: %w", err)
	}
	defer httpResp.Body.Close()

	if err := checkAndDecode(httpResp, &resp); err != nil {
		return fmt.Errorf("signin: %w", err)
	}

	for _, cookie := range httpResp.Cookies() {
		if cookie.Name == "token" {
			c.sessionToken = cookie.Value
		}
	}
	if c.sessionToken == "" {
		return fmt.Errorf("signin: no session cookie in response")
	}
	c.accountID = resp.User.ID
	return nil
}

// AccountID returns the signed-in account id. Only valid after Signin.
func (c *Client) AccountID() string {
	return c.accountID
}

// CreatePost publishes a post as the signed-in account and returns its id.
func (c *Client) CreatePost(ctx context.Context, content, photo string) (string, error) {
	if c.sessionToken == "" {
		return "", fmt.Errorf("not authenticated: call Signin first")
	}

	body := map[string]string{
		"authorId": c.accountID,
		"content":  content,
		"photo":    photo,
	}
	var resp struct {
		Post struct {
			ID string `json:"_id"`
		} `json:"post"`
	}
	if err := c.do(ctx, http.MethodPost, "/post", body, &resp); err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	return resp.Post.ID, nil
}

// AddComment comments on a post as the signed-in account.
func (c *Client) AddComment(ctx context.Context, postID, content string) error {
	if c.sessionToken == "" {
		return fmt.Errorf("not authenticated: call Signin first")
	}

	body := map[string]any{
		"postId": postID,
		"comment": map[string]string{
			"author_id": c.accountID,
			"content":   content,
		},
	}
	if err := c.do(ctx, http.MethodPost, "/comment", body, nil); err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	return nil
}

// AddLike likes a post as the signed-in account.
func (c *Client) AddLike(ctx context.Context, postID string) error {
	if c.sessionToken == "" {
		return fmt.Errorf("not authenticated: call Signin first")
	}

	body := map[string]string{
		"postId": postID,
		"userId": c.accountID,
	}
	if err := c.do(ctx, http.MethodPost, "/like", body, nil); err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: c.sessionToken})
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	return checkAndDecode(resp, result)
}

func checkAndDecode(resp *http.Response, result any) error {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
