package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// CommentThread owns one post's comment tree while a comment view is open.
// It supports add/edit/delete at both comment and reply depth, keeps the
// local snapshot synchronized with the server after each mutation, and
// forwards every new snapshot to the owning feed so the list and the open
// thread never diverge.
//
// Comments and replies are addressed by their stable IDs end to end, so a
// concurrent reorder on the server cannot redirect an edit or delete to the
// wrong entry.
//
// Only one mutation may be in flight at a time; concurrent submissions are
// rejected with ErrBusy rather than queued.
type CommentThread struct {
	gateway  Gateway
	session  SessionReader
	logger   *slog.Logger
	onUpdate func(*Post)

	mu     sync.Mutex
	post   Post
	busy   bool
	closed bool
}

// NewCommentThread opens a thread over a snapshot of the given post.
// onUpdate receives every authoritative snapshot after a successful
// mutation; pass the owning feed's ApplyCommentUpdate. It may be nil.
func NewCommentThread(post Post, gateway Gateway, session SessionReader, logger *slog.Logger, onUpdate func(*Post)) *CommentThread {
	return &CommentThread{
		gateway:  gateway,
		session:  session,
		logger:   logger,
		onUpdate: onUpdate,
		post:     post,
	}
}

// Post returns the current snapshot of the thread's post.
func (t *CommentThread) Post() Post {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.post
}

// AddComment appends a top-level comment. Blank or whitespace-only text is
// rejected before any request is sent.
func (t *CommentThread) AddComment(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyContent
	}
	user := t.session.Current()
	if user == nil {
		return ErrNotAuthenticated
	}

	return t.mutate(ctx, "add comment", func(ctx context.Context, postID string) (*Post, error) {
		return t.gateway.AddComment(ctx, postID, user.Email, text)
	})
}

// EditComment replaces the content of the comment with the given ID. Edits
// may not leave a comment empty.
func (t *CommentThread) EditComment(ctx context.Context, commentID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyContent
	}

	return t.mutate(ctx, "edit comment", func(ctx context.Context, postID string) (*Post, error) {
		return t.gateway.EditComment(ctx, postID, commentID, text)
	})
}

// DeleteComment removes the comment with the given ID along with its
// replies.
func (t *CommentThread) DeleteComment(ctx context.Context, commentID string) error {
	return t.mutate(ctx, "delete comment", func(ctx context.Context, postID string) (*Post, error) {
		return t.gateway.DeleteComment(ctx, postID, commentID)
	})
}

// AddReply appends a reply under the comment with the given ID. The same
// validation as AddComment applies.
func (t *CommentThread) AddReply(ctx context.Context, commentID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyContent
	}
	user := t.session.Current()
	if user == nil {
		return ErrNotAuthenticated
	}

	return t.mutate(ctx, "add reply", func(ctx context.Context, postID string) (*Post, error) {
		return t.gateway.AddReply(ctx, postID, commentID, user.Email, text)
	})
}

// EditReply replaces the content of a reply.
func (t *CommentThread) EditReply(ctx context.Context, commentID, replyID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyContent
	}

	return t.mutate(ctx, "edit reply", func(ctx context.Context, postID string) (*Post, error) {
		return t.gateway.EditReply(ctx, postID, commentID, replyID, text)
	})
}

// DeleteReply removes a reply.
func (t *CommentThread) DeleteReply(ctx context.Context, commentID, replyID string) error {
	return t.mutate(ctx, "delete reply", func(ctx context.Context, postID string) (*Post, error) {
		return t.gateway.DeleteReply(ctx, postID, commentID, replyID)
	})
}

// Close marks the thread as disposed. A response still in flight is
// discarded instead of being applied.
func (t *CommentThread) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

// mutate runs one gateway call under the busy flag and applies the returned
// snapshot. Failures leave prior state intact.
func (t *CommentThread) mutate(ctx context.Context, op string, call func(ctx context.Context, postID string) (*Post, error)) error {
	postID, err := t.begin()
	if err != nil {
		return err
	}
	defer t.end()

	updated, err := call(ctx, postID)
	if err != nil {
		t.logger.Error("comment mutation failed", "op", op, "post_id", postID, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	t.apply(updated)
	return nil
}

func (t *CommentThread) begin() (postID string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return "", ErrClosed
	}
	if t.busy {
		return "", ErrBusy
	}
	t.busy = true
	return t.post.ID, nil
}

func (t *CommentThread) end() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.busy = false
}

func (t *CommentThread) apply(updated *Post) {
	if updated == nil {
		return
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.post = *updated
	onUpdate := t.onUpdate
	t.mu.Unlock()

	if onUpdate != nil {
		onUpdate(updated)
	}
}
