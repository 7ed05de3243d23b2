package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPosts(g *fakeGateway) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g.addPost(Post{ID: "p1", UserEmail: "alice@example.com", Title: "first", Content: "one", CreatedAt: base})
	g.addPost(Post{ID: "p2", UserEmail: "bob@example.com", Title: "second", Content: "two", CreatedAt: base.Add(time.Hour)})
	g.addPost(Post{ID: "p3", UserEmail: "alice@example.com", Title: "third", Content: "three", CreatedAt: base.Add(2 * time.Hour)})
}

func TestFeedLoadNewestFirst(t *testing.T) {
	g := newFakeGateway()
	seedPosts(g)
	feed := NewFeed(g, nil, &fakeSession{}, testLogger())

	require.NoError(t, feed.Load(context.Background()))

	posts := feed.Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, "p3", posts[0].ID)
	assert.Equal(t, "p2", posts[1].ID)
	assert.Equal(t, "p1", posts[2].ID)
}

func TestFeedLoadToleratesFollowingFailure(t *testing.T) {
	g := newFakeGateway()
	seedPosts(g)
	g.failFollowing = errors.New("backend down")
	sess := &fakeSession{user: &User{Email: "carol@example.com"}}
	feed := NewFeed(g, nil, sess, testLogger())

	require.NoError(t, feed.Load(context.Background()))
	assert.Len(t, feed.Posts(), 3)
	assert.False(t, feed.IsFollowing("alice@example.com"))
}

func TestFeedLoadFailurePropagates(t *testing.T) {
	g := newFakeGateway()
	g.failListPosts = errors.New("connection refused")
	feed := NewFeed(g, nil, &fakeSession{}, testLogger())

	assert.Error(t, feed.Load(context.Background()))
}

func TestFeedToggleLikeDoubleToggle(t *testing.T) {
	g := newFakeGateway()
	seedPosts(g)
	sess := &fakeSession{user: &User{Email: "carol@example.com"}}
	feed := NewFeed(g, nil, sess, testLogger())
	require.NoError(t, feed.Load(context.Background()))

	require.NoError(t, feed.ToggleLike(context.Background(), "p1"))
	assert.Equal(t, []string{"carol@example.com"}, g.post("p1").Likes)

	require.NoError(t, feed.ToggleLike(context.Background(), "p1"))
	assert.Empty(t, g.post("p1").Likes)

	for _, post := range feed.Posts() {
		if post.ID == "p1" {
			assert.Empty(t, post.Likes)
		}
	}
}

func TestFeedToggleLikeRequiresSession(t *testing.T) {
	g := newFakeGateway()
	seedPosts(g)
	feed := NewFeed(g, nil, &fakeSession{}, testLogger())
	require.NoError(t, feed.Load(context.Background()))

	err := feed.ToggleLike(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, g.likeCalls)
}

func TestFeedToggleLikeFailureLeavesListUnchanged(t *testing.T) {
	g := newFakeGateway()
	seedPosts(g)
	sess := &fakeSession{user: &User{Email: "carol@example.com"}}
	feed := NewFeed(g, nil, sess, testLogger())
	require.NoError(t, feed.Load(context.Background()))
	before := feed.Posts()

	g.failToggleLike = errors.New("boom")
	assert.Error(t, feed.ToggleLike(context.Background(), "p1"))
	assert.Equal(t, before, feed.Posts())
}

func TestFeedToggleFollowSelfRejected(t *testing.T) {
	g := newFakeGateway()
	sess := &fakeSession{user: &User{Email: "carol@example.com"}}
	feed := NewFeed(g, nil, sess, testLogger())

	err := feed.ToggleFollow(context.Background(), "carol@example.com")
	assert.ErrorIs(t, err, ErrSelfFollow)
	assert.Zero(t, g.followCalls)
	assert.Zero(t, g.unfollowCalls)
}

func TestFeedToggleFollowRequiresSession(t *testing.T) {
	g := newFakeGateway()
	feed := NewFeed(g, nil, &fakeSession{}, testLogger())

	err := feed.ToggleFollow(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, g.followCalls)
}

func TestFeedToggleFollowResyncsAuthoritativeState(t *testing.T) {
	g := newFakeGateway()
	seedPosts(g)
	sess := &fakeSession{user: &User{Email: "carol@example.com"}}
	feed := NewFeed(g, nil, sess, testLogger())
	require.NoError(t, feed.Load(context.Background()))

	require.NoError(t, feed.ToggleFollow(context.Background(), "alice@example.com"))
	assert.True(t, feed.IsFollowing("alice@example.com"))
	assert.Equal(t, 1, g.followCalls)

	require.NoError(t, feed.ToggleFollow(context.Background(), "alice@example.com"))
	assert.False(t, feed.IsFollowing("alice@example.com"))
	assert.Equal(t, 1, g.unfollowCalls)
}

func TestApplyCommentUpdateReplacesOnlyMatchingEntry(t *testing.T) {
	g := newFakeGateway()
	seedPosts(g)
	feed := NewFeed(g, nil, &fakeSession{}, testLogger())
	require.NoError(t, feed.Load(context.Background()))

	updated := g.post("p2")
	updated.Comments = append(updated.Comments, Comment{ID: "c1", UserEmail: "dan@example.com", Content: "nice"})
	feed.ApplyCommentUpdate(&updated)

	posts := feed.Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, "p3", posts[0].ID)
	assert.Equal(t, "p2", posts[1].ID)
	assert.Equal(t, "p1", posts[2].ID)
	assert.Len(t, posts[1].Comments, 1)
	assert.Empty(t, posts[0].Comments)
	assert.Empty(t, posts[2].Comments)
}

func TestFeedLoadFollowingCachesAndFallsBack(t *testing.T) {
	g := newFakeGateway()
	seedPosts(g)
	sess := &fakeSession{user: &User{Email: "carol@example.com"}}
	require.NoError(t, g.Follow(context.Background(), "alice@example.com", "carol@example.com"))

	cache := &fakeCache{}
	feed := NewFeed(g, cache, sess, testLogger())

	stale, err := feed.LoadFollowing(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Len(t, feed.Posts(), 2) // alice's posts only
	assert.Equal(t, 1, cache.saved)

	// backend goes away: cached posts are served and marked stale
	g.failFollowingPosts = errors.New("connection refused")
	stale, err = feed.LoadFollowing(context.Background())
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Len(t, feed.Posts(), 2)
}

func TestFeedLoadFollowingNoUsableCacheFails(t *testing.T) {
	g := newFakeGateway()
	g.failFollowingPosts = errors.New("connection refused")
	sess := &fakeSession{user: &User{Email: "carol@example.com"}}

	// no cache at all
	feed := NewFeed(g, nil, sess, testLogger())
	_, err := feed.LoadFollowing(context.Background())
	assert.Error(t, err)

	// cache present but unreadable
	feed = NewFeed(g, &fakeCache{failGet: errors.New("corrupt")}, sess, testLogger())
	_, err = feed.LoadFollowing(context.Background())
	assert.Error(t, err)
}

func TestFeedToggleLikeSerializesPerPost(t *testing.T) {
	g := newFakeGateway()
	seedPosts(g)
	sess := &fakeSession{user: &User{Email: "carol@example.com"}}
	feed := NewFeed(g, nil, sess, testLogger())
	require.NoError(t, feed.Load(context.Background()))

	g.blockMutations = make(chan struct{})
	g.entered = make(chan struct{}, 2)

	first := make(chan error, 1)
	go func() {
		first <- feed.ToggleLike(context.Background(), "p1")
	}()
	<-g.entered // first toggle is inside the gateway, holding p1's gate

	second := make(chan error, 1)
	go func() {
		second <- feed.ToggleLike(context.Background(), "p1")
	}()

	// the second p1 toggle must wait at the gate, not enter the gateway
	select {
	case <-g.entered:
		t.Fatal("second toggle entered the gateway while the first was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	// a different post is not serialized behind p1
	p2Done := make(chan error, 1)
	go func() {
		p2Done <- feed.ToggleLike(context.Background(), "p2")
	}()
	<-g.entered

	close(g.blockMutations)
	require.NoError(t, <-first)
	require.NoError(t, <-second)
	require.NoError(t, <-p2Done)

	// two toggles on p1 cancel out, the single p2 toggle sticks
	assert.Empty(t, g.post("p1").Likes)
	assert.Equal(t, []string{"carol@example.com"}, g.post("p2").Likes)
}

func TestFeedClosedDiscardsLateSnapshot(t *testing.T) {
	g := newFakeGateway()
	seedPosts(g)
	feed := NewFeed(g, nil, &fakeSession{}, testLogger())
	require.NoError(t, feed.Load(context.Background()))

	feed.Close()
	updated := g.post("p1")
	updated.Title = "changed after dispose"
	feed.ApplyCommentUpdate(&updated)

	for _, post := range feed.Posts() {
		assert.NotEqual(t, "changed after dispose", post.Title)
	}
}
