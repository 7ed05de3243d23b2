package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/devconnect/devconnect-go/internal/domain"
)

const defaultBaseURL = "http://localhost:4000"

// Client is the DevConnect REST API gateway. All bodies and responses are
// JSON; the bearer token, once set, is attached to every request.
//
// Client implements domain.Gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// populated after Login/Register, or restored from a saved session
	token string
}

// NewClient creates an API client. If baseURL is empty, it defaults to
// http://localhost:4000. A zero timeout means 30 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetToken installs a bearer token, typically restored from a persisted
// session. An empty string clears it.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Register creates an account and returns the new identity plus its token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	c.token = resp.Token
	return &AuthResult{User: resp.User, Token: resp.Token}, nil
}

// Login authenticates and returns the identity plus its token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.token = resp.Token
	return &AuthResult{User: resp.User, Token: resp.Token}, nil
}

// ListPosts retrieves every post in backend storage order.
func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &posts); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListFollowingPosts retrieves posts authored by users email follows.
func (c *Client) ListFollowingPosts(ctx context.Context, email string) ([]domain.Post, error) {
	var resp postsResponse
	path := "/api/posts/following/" + url.PathEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list following posts: %w", err)
	}
	return resp.Posts, nil
}

// CreatePost publishes a post and returns the stored version.
func (c *Client) CreatePost(ctx context.Context, post domain.Post) (*domain.Post, error) {
	var resp postResponse
	if err := c.do(ctx, http.MethodPost, "/api/posts", post, &resp); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &resp.Post, nil
}

// UpdatePost sends an edited post and returns the stored version.
func (c *Client) UpdatePost(ctx context.Context, post domain.Post) (*domain.Post, error) {
	var resp postResponse
	path := "/api/posts/" + url.PathEscape(post.ID)
	if err := c.do(ctx, http.MethodPut, path, post, &resp); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &resp.Post, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	path := "/api/posts/" + url.PathEscape(postID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// ToggleLike flips userEmail's like on a post and returns the updated post.
func (c *Client) ToggleLike(ctx context.Context, postID, userEmail string) (*domain.Post, error) {
	var resp postResponse
	path := "/api/posts/" + url.PathEscape(postID) + "/like"
	if err := c.do(ctx, http.MethodPut, path, likeRequest{UserEmail: userEmail}, &resp); err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	return &resp.Post, nil
}

// AddComment appends a top-level comment and returns the updated post.
func (c *Client) AddComment(ctx context.Context, postID, userEmail, content string) (*domain.Post, error) {
	var resp postResponse
	path := "/api/posts/" + url.PathEscape(postID) + "/comment"
	body := commentRequest{UserEmail: userEmail, Content: content}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return &resp.Post, nil
}

// EditComment replaces a comment's content and returns the updated post.
func (c *Client) EditComment(ctx context.Context, postID, commentID, content string) (*domain.Post, error) {
	var resp postResponse
	path := commentPath(postID, commentID)
	if err := c.do(ctx, http.MethodPut, path, commentRequest{Content: content}, &resp); err != nil {
		return nil, fmt.Errorf("edit comment: %w", err)
	}
	return &resp.Post, nil
}

// DeleteComment removes a comment and returns the updated post.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) (*domain.Post, error) {
	var resp postResponse
	path := commentPath(postID, commentID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("delete comment: %w", err)
	}
	return &resp.Post, nil
}

// AddReply appends a reply under a comment and returns the updated post.
func (c *Client) AddReply(ctx context.Context, postID, commentID, userEmail, content string) (*domain.Post, error) {
	var resp postResponse
	path := commentPath(postID, commentID) + "/reply"
	body := commentRequest{UserEmail: userEmail, Content: content}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, fmt.Errorf("add reply: %w", err)
	}
	return &resp.Post, nil
}

// EditReply replaces a reply's content and returns the updated post.
func (c *Client) EditReply(ctx context.Context, postID, commentID, replyID, content string) (*domain.Post, error) {
	var resp postResponse
	path := replyPath(postID, commentID, replyID)
	if err := c.do(ctx, http.MethodPut, path, commentRequest{Content: content}, &resp); err != nil {
		return nil, fmt.Errorf("edit reply: %w", err)
	}
	return &resp.Post, nil
}

// DeleteReply removes a reply and returns the updated post.
func (c *Client) DeleteReply(ctx context.Context, postID, commentID, replyID string) (*domain.Post, error) {
	var resp postResponse
	path := replyPath(postID, commentID, replyID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("delete reply: %w", err)
	}
	return &resp.Post, nil
}

// UserPosts retrieves a user's display info and authored posts in one call.
// An unknown user yields an *Error wrapping domain.ErrNotFound.
func (c *Client) UserPosts(ctx context.Context, email string) (*domain.User, []domain.Post, error) {
	var resp userPostsResponse
	path := "/api/users/" + url.PathEscape(email) + "/posts"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, nil, fmt.Errorf("user posts: %w", err)
	}
	return &resp.User, resp.Posts, nil
}

// Followers retrieves the emails following the given user plus the count.
func (c *Client) Followers(ctx context.Context, email string) ([]string, int, error) {
	var resp followersResponse
	path := "/api/users/" + url.PathEscape(email) + "/followers"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, 0, fmt.Errorf("followers: %w", err)
	}
	return resp.Followers, resp.Count, nil
}

// Following retrieves the emails the given user follows plus the count.
func (c *Client) Following(ctx context.Context, email string) ([]string, int, error) {
	var resp followingResponse
	path := "/api/users/" + url.PathEscape(email) + "/following"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, 0, fmt.Errorf("following: %w", err)
	}
	return resp.Following, resp.Count, nil
}

// Follow adds a follow edge from userEmail to targetEmail.
func (c *Client) Follow(ctx context.Context, targetEmail, userEmail string) error {
	path := "/api/users/" + url.PathEscape(targetEmail) + "/follow"
	if err := c.do(ctx, http.MethodPut, path, followRequest{UserEmail: userEmail}, nil); err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	return nil
}

// Unfollow removes the follow edge from userEmail to targetEmail.
func (c *Client) Unfollow(ctx context.Context, targetEmail, userEmail string) error {
	path := "/api/users/" + url.PathEscape(targetEmail) + "/unfollow"
	if err := c.do(ctx, http.MethodPut, path, followRequest{UserEmail: userEmail}, nil); err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	return nil
}

func commentPath(postID, commentID string) string {
	return "/api/posts/" + url.PathEscape(postID) + "/comment/" + url.PathEscape(commentID)
}

func replyPath(postID, commentID, replyID string) string {
	return commentPath(postID, commentID) + "/reply/" + url.PathEscape(replyID)
}

func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
