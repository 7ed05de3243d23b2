package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devconnect/devconnect-go/internal/domain"
)

var (
	postTitle   string
	postContent string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create, edit, or delete your posts",
}

var postCreateCmd = &cobra.Command{
	Use:   "create --title <title> --content <text>",
	Short: "Publish a new post",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireAuth(); err != nil {
			return err
		}

		profile := domain.NewProfile(app.client, app.sessions, app.logger)
		defer profile.Close()

		var created *domain.Post
		err := withSpinner("Publishing post", func() error {
			var err error
			created, err = profile.CreatePost(cmd.Context(), postTitle, postContent)
			return err
		})
		if err != nil {
			if errors.Is(err, domain.ErrEmptyTitle) || errors.Is(err, domain.ErrEmptyContent) {
				inline("title and content are both required")
				return err
			}
			alertln("could not create post")
			return err
		}
		color.Green("Posted %q (id %s)", created.Title, created.ID)
		return nil
	},
}

var postEditCmd = &cobra.Command{
	Use:   "edit <post-id> [--title <title>] [--content <text>]",
	Short: "Edit one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireAuth()
		if err != nil {
			return err
		}

		profile := domain.NewProfile(app.client, app.sessions, app.logger)
		defer profile.Close()

		err = withSpinner("Loading your posts", func() error {
			return profile.Load(cmd.Context(), user.Email)
		})
		if err != nil {
			banner("could not load your posts")
			return err
		}

		var target *domain.Post
		for _, post := range profile.Posts() {
			if post.ID == args[0] {
				p := post
				target = &p
				break
			}
		}
		if target == nil {
			return fmt.Errorf("post %s not found in your profile", args[0])
		}

		if cmd.Flags().Changed("title") {
			target.Title = postTitle
		}
		if cmd.Flags().Changed("content") {
			target.Content = postContent
		}

		err = withSpinner("Updating post", func() error {
			return profile.UpdatePost(cmd.Context(), *target)
		})
		if err != nil {
			if errors.Is(err, domain.ErrEmptyTitle) || errors.Is(err, domain.ErrEmptyContent) {
				inline("title and content must not be empty")
				return err
			}
			alertln("could not update post")
			return err
		}
		color.Green("Post updated.")
		return nil
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireAuth(); err != nil {
			return err
		}

		profile := domain.NewProfile(app.client, app.sessions, app.logger)
		defer profile.Close()

		err := withSpinner("Deleting post", func() error {
			return profile.DeletePost(cmd.Context(), args[0])
		})
		if err != nil {
			if msg := profile.Alert(); msg != "" {
				alertln(msg)
			}
			return err
		}
		color.Green("Post deleted.")
		return nil
	},
}

func init() {
	postCreateCmd.Flags().StringVar(&postTitle, "title", "", "post title")
	postCreateCmd.Flags().StringVar(&postContent, "content", "", "post body")
	postEditCmd.Flags().StringVar(&postTitle, "title", "", "new title")
	postEditCmd.Flags().StringVar(&postContent, "content", "", "new body")

	postCmd.AddCommand(postCreateCmd, postEditCmd, postDeleteCmd)
	rootCmd.AddCommand(postCmd)
}
