package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Feed is the view-model for the global and following feeds. It loads the
// post list, applies like and follow toggles, and merges authoritative
// server snapshots back into the list.
//
// Feed is safe for concurrent use. Mutations that target the same post are
// serialized through a per-post gate, so two racing requests cannot
// interleave their authoritative replacements.
type Feed struct {
	gateway Gateway
	cache   PostCache // may be nil; only the following feed uses it
	session SessionReader
	logger  *slog.Logger

	mu        sync.Mutex
	posts     []Post
	following map[string]bool
	closed    bool

	gatesMu sync.Mutex
	gates   map[string]*sync.Mutex
}

// NewFeed creates a feed view-model. cache may be nil to disable the
// offline fallback for the following feed.
func NewFeed(gateway Gateway, cache PostCache, session SessionReader, logger *slog.Logger) *Feed {
	return &Feed{
		gateway:   gateway,
		cache:     cache,
		session:   session,
		logger:    logger,
		following: map[string]bool{},
		gates:     map[string]*sync.Mutex{},
	}
}

// Load fetches all posts, newest-first. When a session is present it also
// fetches the caller's following set; a failure there is logged and
// tolerated so the posts still display.
func (f *Feed) Load(ctx context.Context) error {
	posts, err := f.gateway.ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("load posts: %w", err)
	}
	reversePosts(posts)

	following := map[string]bool{}
	if user := f.session.Current(); user != nil {
		emails, _, err := f.gateway.Following(ctx, user.Email)
		if err != nil {
			f.logger.Warn("failed to load following set", "error", err)
		} else {
			for _, e := range emails {
				following[e] = true
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.posts = posts
	f.following = following
	return nil
}

// LoadFollowing fetches posts from followed users. Snapshots are written to
// the local cache; when the fetch fails and cached posts exist, those are
// served instead and stale reports true.
func (f *Feed) LoadFollowing(ctx context.Context) (stale bool, err error) {
	user := f.session.Current()
	if user == nil {
		return false, ErrNotAuthenticated
	}

	posts, err := f.gateway.ListFollowingPosts(ctx, user.Email)
	if err != nil {
		if f.cache != nil {
			cached, cacheErr := f.cache.GetPosts(ctx)
			if cacheErr == nil && len(cached) > 0 {
				f.logger.Warn("following feed unavailable, serving cached posts", "error", err)
				f.setPosts(cached)
				return true, nil
			}
		}
		return false, fmt.Errorf("load following feed: %w", err)
	}

	f.setPosts(posts)
	if f.cache != nil {
		if err := f.cache.SavePosts(ctx, posts); err != nil {
			f.logger.Warn("failed to cache following feed", "error", err)
		}
	}
	return false, nil
}

// Posts returns a copy of the current post list.
func (f *Feed) Posts() []Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Post, len(f.posts))
	copy(out, f.posts)
	return out
}

// IsFollowing reports whether the session user follows email, per the last
// loaded or re-fetched following set.
func (f *Feed) IsFollowing(email string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.following[email]
}

// ToggleLike flips the session user's like on the given post. The server's
// returned snapshot replaces the post; the like set is never mutated
// locally, so the client cannot drift from server state. On failure the
// list is left unchanged.
func (f *Feed) ToggleLike(ctx context.Context, postID string) error {
	user := f.session.Current()
	if user == nil {
		return ErrNotAuthenticated
	}

	gate := f.postGate(postID)
	gate.Lock()
	defer gate.Unlock()

	updated, err := f.gateway.ToggleLike(ctx, postID, user.Email)
	if err != nil {
		return fmt.Errorf("toggle like: %w", err)
	}
	f.applyPost(updated)
	return nil
}

// ToggleFollow follows or unfollows email depending on the current known
// state, then re-fetches the authoritative following set from the server.
func (f *Feed) ToggleFollow(ctx context.Context, email string) error {
	user := f.session.Current()
	if user == nil {
		return ErrNotAuthenticated
	}
	if email == user.Email {
		return ErrSelfFollow
	}

	f.mu.Lock()
	wasFollowing := f.following[email]
	f.mu.Unlock()

	var err error
	if wasFollowing {
		err = f.gateway.Unfollow(ctx, email, user.Email)
	} else {
		err = f.gateway.Follow(ctx, email, user.Email)
	}
	if err != nil {
		return fmt.Errorf("toggle follow: %w", err)
	}

	emails, _, err := f.gateway.Following(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("refresh following set: %w", err)
	}

	following := make(map[string]bool, len(emails))
	for _, e := range emails {
		following[e] = true
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.following = following
	return nil
}

// ApplyCommentUpdate merges a post snapshot coming from an open comment
// thread into the list. Pure local operation; only the entry with the
// matching ID is replaced and the order of all other posts is preserved.
func (f *Feed) ApplyCommentUpdate(post *Post) {
	f.applyPost(post)
}

// Close marks the view-model as disposed. Any response still in flight is
// discarded instead of being applied to a no-longer-relevant view.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *Feed) setPosts(posts []Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.posts = posts
}

func (f *Feed) applyPost(post *Post) {
	if post == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for i := range f.posts {
		if f.posts[i].ID == post.ID {
			f.posts[i] = *post
			return
		}
	}
}

// postGate returns the mutex serializing mutations for one post.
func (f *Feed) postGate(postID string) *sync.Mutex {
	f.gatesMu.Lock()
	defer f.gatesMu.Unlock()
	gate, ok := f.gates[postID]
	if !ok {
		gate = &sync.Mutex{}
		f.gates[postID] = gate
	}
	return gate
}

// reversePosts flips backend storage order (oldest-first) into display
// order (newest-first).
func reversePosts(posts []Post) {
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
}
