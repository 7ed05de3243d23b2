package domain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// fakeGateway implements Gateway with in-memory server semantics: toggles
// flip real state and every mutation returns a fresh authoritative
// snapshot, the way the backend behaves.
type fakeGateway struct {
	mu    sync.Mutex
	posts map[string]*Post
	order []string // storage order, oldest first
	users map[string]User
	// followers maps followee email to the set of follower emails.
	followers map[string]map[string]bool

	nextID int

	// error injection
	failListPosts      error
	failFollowingPosts error
	failFollowers      error
	failFollowing      error
	failToggleLike     error
	failDeletePost     error
	failCommentOps     error

	// call counters
	likeCalls     int
	followCalls   int
	unfollowCalls int
	commentCalls  int
	deleteCalls   int

	// when blockMutations is non-nil, comment/like mutations signal entered
	// (if set) and then wait for blockMutations to close
	blockMutations chan struct{}
	entered        chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		posts:     map[string]*Post{},
		users:     map[string]User{},
		followers: map[string]map[string]bool{},
	}
}

func (g *fakeGateway) addPost(post Post) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := clonePost(post)
	g.posts[post.ID] = &p
	g.order = append(g.order, post.ID)
}

func (g *fakeGateway) post(id string) Post {
	g.mu.Lock()
	defer g.mu.Unlock()
	return clonePost(*g.posts[id])
}

func (g *fakeGateway) maybeBlock() {
	g.mu.Lock()
	block := g.blockMutations
	entered := g.entered
	g.mu.Unlock()
	if block != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		<-block
	}
}

func (g *fakeGateway) ListPosts(ctx context.Context) ([]Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failListPosts != nil {
		return nil, g.failListPosts
	}
	out := make([]Post, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, clonePost(*g.posts[id]))
	}
	return out, nil
}

func (g *fakeGateway) ListFollowingPosts(ctx context.Context, email string) ([]Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFollowingPosts != nil {
		return nil, g.failFollowingPosts
	}
	var out []Post
	for _, id := range g.order {
		p := g.posts[id]
		if g.followers[p.UserEmail][email] {
			out = append(out, clonePost(*p))
		}
	}
	return out, nil
}

func (g *fakeGateway) CreatePost(ctx context.Context, post Post) (*Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := clonePost(post)
	g.posts[p.ID] = &p
	g.order = append(g.order, p.ID)
	out := clonePost(p)
	return &out, nil
}

func (g *fakeGateway) UpdatePost(ctx context.Context, post Post) (*Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	existing, ok := g.posts[post.ID]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", post.ID, ErrNotFound)
	}
	existing.Title = post.Title
	existing.Content = post.Content
	out := clonePost(*existing)
	return &out, nil
}

func (g *fakeGateway) DeletePost(ctx context.Context, postID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleteCalls++
	if g.failDeletePost != nil {
		return g.failDeletePost
	}
	delete(g.posts, postID)
	kept := g.order[:0]
	for _, id := range g.order {
		if id != postID {
			kept = append(kept, id)
		}
	}
	g.order = kept
	return nil
}

func (g *fakeGateway) ToggleLike(ctx context.Context, postID, userEmail string) (*Post, error) {
	g.maybeBlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.likeCalls++
	if g.failToggleLike != nil {
		return nil, g.failToggleLike
	}
	post, ok := g.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	if post.LikedBy(userEmail) {
		kept := post.Likes[:0]
		for _, e := range post.Likes {
			if e != userEmail {
				kept = append(kept, e)
			}
		}
		post.Likes = kept
	} else {
		post.Likes = append(post.Likes, userEmail)
	}
	out := clonePost(*post)
	return &out, nil
}

func (g *fakeGateway) AddComment(ctx context.Context, postID, userEmail, content string) (*Post, error) {
	g.maybeBlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.commentCalls++
	if g.failCommentOps != nil {
		return nil, g.failCommentOps
	}
	post, ok := g.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	g.nextID++
	post.Comments = append(post.Comments, Comment{
		ID:        fmt.Sprintf("c%d", g.nextID),
		UserEmail: userEmail,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	out := clonePost(*post)
	return &out, nil
}

func (g *fakeGateway) EditComment(ctx context.Context, postID, commentID, content string) (*Post, error) {
	return g.mutateComment(postID, commentID, func(c *Comment) {
		c.Content = content
	})
}

func (g *fakeGateway) DeleteComment(ctx context.Context, postID, commentID string) (*Post, error) {
	g.maybeBlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.commentCalls++
	if g.failCommentOps != nil {
		return nil, g.failCommentOps
	}
	post, ok := g.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	kept := post.Comments[:0]
	for _, c := range post.Comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	post.Comments = kept
	out := clonePost(*post)
	return &out, nil
}

func (g *fakeGateway) AddReply(ctx context.Context, postID, commentID, userEmail, content string) (*Post, error) {
	g.mu.Lock()
	g.nextID++
	id := fmt.Sprintf("r%d", g.nextID)
	g.mu.Unlock()
	return g.mutateComment(postID, commentID, func(c *Comment) {
		c.Replies = append(c.Replies, Comment{
			ID:        id,
			UserEmail: userEmail,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		})
	})
}

func (g *fakeGateway) EditReply(ctx context.Context, postID, commentID, replyID, content string) (*Post, error) {
	return g.mutateComment(postID, commentID, func(c *Comment) {
		for i := range c.Replies {
			if c.Replies[i].ID == replyID {
				c.Replies[i].Content = content
				return
			}
		}
	})
}

func (g *fakeGateway) DeleteReply(ctx context.Context, postID, commentID, replyID string) (*Post, error) {
	return g.mutateComment(postID, commentID, func(c *Comment) {
		kept := c.Replies[:0]
		for _, r := range c.Replies {
			if r.ID != replyID {
				kept = append(kept, r)
			}
		}
		c.Replies = kept
	})
}

func (g *fakeGateway) mutateComment(postID, commentID string, mutate func(*Comment)) (*Post, error) {
	g.maybeBlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.commentCalls++
	if g.failCommentOps != nil {
		return nil, g.failCommentOps
	}
	post, ok := g.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	comment := post.CommentByID(commentID)
	if comment == nil {
		return nil, fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	mutate(comment)
	out := clonePost(*post)
	return &out, nil
}

func (g *fakeGateway) UserPosts(ctx context.Context, email string) (*User, []Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	user, ok := g.users[email]
	if !ok {
		return nil, nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	var posts []Post
	for _, id := range g.order {
		if g.posts[id].UserEmail == email {
			posts = append(posts, clonePost(*g.posts[id]))
		}
	}
	return &user, posts, nil
}

func (g *fakeGateway) Followers(ctx context.Context, email string) ([]string, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFollowers != nil {
		return nil, 0, g.failFollowers
	}
	var out []string
	for follower := range g.followers[email] {
		out = append(out, follower)
	}
	return out, len(out), nil
}

func (g *fakeGateway) Following(ctx context.Context, email string) ([]string, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFollowing != nil {
		return nil, 0, g.failFollowing
	}
	var out []string
	for followee, set := range g.followers {
		if set[email] {
			out = append(out, followee)
		}
	}
	return out, len(out), nil
}

func (g *fakeGateway) Follow(ctx context.Context, targetEmail, userEmail string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.followCalls++
	if g.followers[targetEmail] == nil {
		g.followers[targetEmail] = map[string]bool{}
	}
	g.followers[targetEmail][userEmail] = true
	return nil
}

func (g *fakeGateway) Unfollow(ctx context.Context, targetEmail, userEmail string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unfollowCalls++
	delete(g.followers[targetEmail], userEmail)
	return nil
}

func clonePost(p Post) Post {
	out := p
	out.Likes = append([]string(nil), p.Likes...)
	out.Comments = make([]Comment, len(p.Comments))
	for i, c := range p.Comments {
		out.Comments[i] = c
		out.Comments[i].Replies = append([]Comment(nil), c.Replies...)
	}
	return out
}

// fakeSession implements SessionReader.
type fakeSession struct {
	user *User
}

func (s *fakeSession) Current() *User {
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// fakeCache implements PostCache.
type fakeCache struct {
	mu      sync.Mutex
	posts   []Post
	saved   int
	failGet error
}

func (c *fakeCache) SavePosts(ctx context.Context, posts []Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = append([]Post(nil), posts...)
	c.saved++
	return nil
}

func (c *fakeCache) GetPosts(ctx context.Context) ([]Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return nil, c.failGet
	}
	return append([]Post(nil), c.posts...), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
