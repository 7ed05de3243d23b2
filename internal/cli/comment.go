package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devconnect/devconnect-go/internal/domain"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "View and manage comments on a post",
}

var commentListCmd = &cobra.Command{
	Use:   "list <post-id>",
	Short: "Show a post's comment tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feed, thread, err := openThread(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer feed.Close()
		defer thread.Close()

		renderComments(thread.Post())
		return nil
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add <post-id> <text>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runThreadMutation(cmd.Context(), args[0], func(ctx context.Context, thread *domain.CommentThread) error {
			return thread.AddComment(ctx, strings.Join(args[1:], " "))
		})
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit <post-id> <comment-id> <text>",
	Short: "Edit your comment",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runThreadMutation(cmd.Context(), args[0], func(ctx context.Context, thread *domain.CommentThread) error {
			return thread.EditComment(ctx, args[1], strings.Join(args[2:], " "))
		})
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <post-id> <comment-id>",
	Short: "Delete your comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runThreadMutation(cmd.Context(), args[0], func(ctx context.Context, thread *domain.CommentThread) error {
			return thread.DeleteComment(ctx, args[1])
		})
	},
}

var replyCmd = &cobra.Command{
	Use:   "reply",
	Short: "Manage replies under a comment",
}

var replyAddCmd = &cobra.Command{
	Use:   "add <post-id> <comment-id> <text>",
	Short: "Reply to a comment",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runThreadMutation(cmd.Context(), args[0], func(ctx context.Context, thread *domain.CommentThread) error {
			return thread.AddReply(ctx, args[1], strings.Join(args[2:], " "))
		})
	},
}

var replyEditCmd = &cobra.Command{
	Use:   "edit <post-id> <comment-id> <reply-id> <text>",
	Short: "Edit your reply",
	Args:  cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runThreadMutation(cmd.Context(), args[0], func(ctx context.Context, thread *domain.CommentThread) error {
			return thread.EditReply(ctx, args[1], args[2], strings.Join(args[3:], " "))
		})
	},
}

var replyDeleteCmd = &cobra.Command{
	Use:   "delete <post-id> <comment-id> <reply-id>",
	Short: "Delete your reply",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runThreadMutation(cmd.Context(), args[0], func(ctx context.Context, thread *domain.CommentThread) error {
			return thread.DeleteReply(ctx, args[1], args[2])
		})
	},
}

func init() {
	commentCmd.AddCommand(commentListCmd, commentAddCmd, commentEditCmd, commentDeleteCmd)
	replyCmd.AddCommand(replyAddCmd, replyEditCmd, replyDeleteCmd)
	rootCmd.AddCommand(commentCmd, replyCmd)
}

// openThread loads the feed, finds the post, and opens a comment thread
// wired back to the feed so both stay in sync.
func openThread(ctx context.Context, postID string) (*domain.Feed, *domain.CommentThread, error) {
	feed, _, err := newFeed(false)
	if err != nil {
		return nil, nil, err
	}

	err = withSpinner("Loading post", func() error {
		return feed.Load(ctx)
	})
	if err != nil {
		feed.Close()
		banner("could not load posts")
		return nil, nil, err
	}

	var target *domain.Post
	for _, post := range feed.Posts() {
		if post.ID == postID {
			p := post
			target = &p
			break
		}
	}
	if target == nil {
		feed.Close()
		return nil, nil, fmt.Errorf("post %s not found", postID)
	}

	thread := domain.NewCommentThread(*target, app.client, app.sessions, app.logger, feed.ApplyCommentUpdate)
	return feed, thread, nil
}

func runThreadMutation(ctx context.Context, postID string, mutate func(context.Context, *domain.CommentThread) error) error {
	if _, err := requireAuth(); err != nil {
		return err
	}

	feed, thread, err := openThread(ctx, postID)
	if err != nil {
		return err
	}
	defer feed.Close()
	defer thread.Close()

	err = withSpinner("Saving", func() error {
		return mutate(ctx, thread)
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyContent) {
			inline("comment text must not be empty")
			return err
		}
		alertln("could not save, try again")
		return err
	}

	color.Green("Saved.")
	renderComments(thread.Post())
	return nil
}
