package domain

import "context"

// Gateway defines the remote API operations the view-models depend on.
// Implemented by the api package; tests substitute a fake.
type Gateway interface {
	// ListPosts retrieves every post, oldest-first as the backend stores
	// them. Callers reorder for display.
	ListPosts(ctx context.Context) ([]Post, error)

	// ListFollowingPosts retrieves posts authored by users the given email
	// follows.
	ListFollowingPosts(ctx context.Context, email string) ([]Post, error)

	CreatePost(ctx context.Context, post Post) (*Post, error)
	UpdatePost(ctx context.Context, post Post) (*Post, error)
	DeletePost(ctx context.Context, postID string) error

	// ToggleLike flips userEmail's membership in the post's like set and
	// returns the updated post.
	ToggleLike(ctx context.Context, postID, userEmail string) (*Post, error)

	AddComment(ctx context.Context, postID, userEmail, content string) (*Post, error)
	EditComment(ctx context.Context, postID, commentID, content string) (*Post, error)
	DeleteComment(ctx context.Context, postID, commentID string) (*Post, error)
	AddReply(ctx context.Context, postID, commentID, userEmail, content string) (*Post, error)
	EditReply(ctx context.Context, postID, commentID, replyID, content string) (*Post, error)
	DeleteReply(ctx context.Context, postID, commentID, replyID string) (*Post, error)

	// UserPosts retrieves a user's display info together with their
	// authored posts.
	UserPosts(ctx context.Context, email string) (*User, []Post, error)

	// Followers and Following return the relation emails plus the count the
	// backend reports.
	Followers(ctx context.Context, email string) ([]string, int, error)
	Following(ctx context.Context, email string) ([]string, int, error)

	Follow(ctx context.Context, targetEmail, userEmail string) error
	Unfollow(ctx context.Context, targetEmail, userEmail string) error
}

// PostCache persists feed snapshots locally so the following feed can fall
// back to the last known posts when the backend is unreachable.
type PostCache interface {
	SavePosts(ctx context.Context, posts []Post) error
	GetPosts(ctx context.Context) ([]Post, error)
}

// SessionReader exposes the current identity to view-models without handing
// them the session store's write side.
type SessionReader interface {
	// Current returns the logged-in user, or nil when logged out.
	Current() *User
}
