package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Profile is the view-model for a single user's profile page: display info,
// authored posts, follower/following counts, and post create/edit/delete
// for the owner.
type Profile struct {
	gateway Gateway
	session SessionReader
	logger  *slog.Logger

	mu             sync.Mutex
	user           User
	posts          []Post
	followersCount int
	followingCount int
	isFollowing    bool
	alert          string
	closed         bool
}

// NewProfile creates a profile view-model.
func NewProfile(gateway Gateway, session SessionReader, logger *slog.Logger) *Profile {
	return &Profile{
		gateway: gateway,
		session: session,
		logger:  logger,
	}
}

// Load fetches the target user's display info and authored posts,
// newest-first. An unknown user yields an error wrapping ErrNotFound.
// Follower/following counts and "am I following them" come from a second,
// independent fetch whose failure does not discard the loaded posts.
func (p *Profile) Load(ctx context.Context, email string) error {
	user, posts, err := p.gateway.UserPosts(ctx, email)
	if err != nil {
		return fmt.Errorf("load profile %s: %w", email, err)
	}
	reversePosts(posts)

	var (
		followers      []string
		followersCount int
		followingCount int
	)
	followers, followersCount, err = p.gateway.Followers(ctx, email)
	if err != nil {
		p.logger.Warn("failed to load followers", "email", email, "error", err)
	} else {
		_, followingCount, err = p.gateway.Following(ctx, email)
		if err != nil {
			p.logger.Warn("failed to load following count", "email", email, "error", err)
		}
	}

	isFollowing := false
	if self := p.session.Current(); self != nil {
		for _, e := range followers {
			if e == self.Email {
				isFollowing = true
				break
			}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.user = *user
	p.posts = posts
	p.followersCount = followersCount
	p.followingCount = followingCount
	p.isFollowing = isFollowing
	return nil
}

// User returns the profile's display info.
func (p *Profile) User() User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user
}

// Posts returns a copy of the profile's post list.
func (p *Profile) Posts() []Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Post, len(p.posts))
	copy(out, p.posts)
	return out
}

// FollowCounts returns the follower and following counts.
func (p *Profile) FollowCounts() (followers, following int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.followersCount, p.followingCount
}

// IsFollowing reports whether the session user follows this profile.
func (p *Profile) IsFollowing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isFollowing
}

// IsOwn reports whether the loaded profile belongs to the session user.
func (p *Profile) IsOwn() bool {
	self := p.session.Current()
	if self == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user.Email == self.Email
}

// CreatePost publishes a new post authored by the session user and prepends
// the server's returned post to the list. Title and content are required.
// The post ID is generated client-side.
func (p *Profile) CreatePost(ctx context.Context, title, content string) (*Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	user := p.session.Current()
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	draft := Post{
		ID:        uuid.NewString(),
		UserEmail: user.Email,
		UserName:  user.Name,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	created, err := p.gateway.CreatePost(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return created, ErrClosed
	}
	p.posts = append([]Post{*created}, p.posts...)
	return created, nil
}

// UpdatePost sends the edited post and replaces the matching entry with the
// server's response.
func (p *Profile) UpdatePost(ctx context.Context, post Post) error {
	if strings.TrimSpace(post.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(post.Content) == "" {
		return ErrEmptyContent
	}

	updated, err := p.gateway.UpdatePost(ctx, post)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	for i := range p.posts {
		if p.posts[i].ID == updated.ID {
			p.posts[i] = *updated
			break
		}
	}
	return nil
}

// DeletePost removes the post locally only after the server confirms the
// deletion. A failed deletion leaves the list untouched and records an
// alert-level condition.
func (p *Profile) DeletePost(ctx context.Context, postID string) error {
	if err := p.gateway.DeletePost(ctx, postID); err != nil {
		p.logger.Error("delete post failed", "post_id", postID, "error", err)
		p.setAlert("failed to delete post")
		return fmt.Errorf("delete post: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	kept := p.posts[:0]
	for _, post := range p.posts {
		if post.ID != postID {
			kept = append(kept, post)
		}
	}
	p.posts = kept
	return nil
}

// ToggleFollow follows or unfollows the profile's user, then re-fetches the
// follower list so count and membership reflect authoritative server state.
func (p *Profile) ToggleFollow(ctx context.Context) error {
	self := p.session.Current()
	if self == nil {
		return ErrNotAuthenticated
	}

	p.mu.Lock()
	email := p.user.Email
	wasFollowing := p.isFollowing
	p.mu.Unlock()

	if email == self.Email {
		return ErrSelfFollow
	}

	var err error
	if wasFollowing {
		err = p.gateway.Unfollow(ctx, email, self.Email)
	} else {
		err = p.gateway.Follow(ctx, email, self.Email)
	}
	if err != nil {
		return fmt.Errorf("toggle follow: %w", err)
	}

	followers, count, err := p.gateway.Followers(ctx, email)
	if err != nil {
		return fmt.Errorf("refresh followers: %w", err)
	}

	isFollowing := false
	for _, e := range followers {
		if e == self.Email {
			isFollowing = true
			break
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.followersCount = count
	p.isFollowing = isFollowing
	return nil
}

// Alert returns and clears the last alert-level condition, empty when none.
func (p *Profile) Alert() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	alert := p.alert
	p.alert = ""
	return alert
}

// Close marks the view-model as disposed.
func (p *Profile) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *Profile) setAlert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alert = msg
}
