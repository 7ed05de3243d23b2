package cli

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devconnect/devconnect-go/internal/domain"
)

var followingOnly bool

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the global feed, or posts from followed users",
	RunE: func(cmd *cobra.Command, args []string) error {
		feed, cleanup, err := newFeed(followingOnly)
		if err != nil {
			return err
		}
		defer cleanup()
		defer feed.Close()

		if followingOnly {
			if _, err := requireAuth(); err != nil {
				return err
			}
			var stale bool
			err = withSpinner("Loading following feed", func() error {
				var err error
				stale, err = feed.LoadFollowing(cmd.Context())
				return err
			})
			if err != nil {
				banner("could not load following feed")
				return err
			}
			if stale {
				banner("backend unreachable, showing cached posts")
			}
		} else {
			err = withSpinner("Loading feed", func() error {
				return feed.Load(cmd.Context())
			})
			if err != nil {
				banner("could not load feed")
				return err
			}
		}

		renderPosts(feed.Posts(), app.sessions.Current(), feed.IsFollowing)
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Toggle your like on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireAuth(); err != nil {
			return err
		}

		feed, cleanup, err := newFeed(false)
		if err != nil {
			return err
		}
		defer cleanup()
		defer feed.Close()

		err = withSpinner("Toggling like", func() error {
			return feed.ToggleLike(cmd.Context(), args[0])
		})
		if err != nil {
			alertln("could not like post, try again")
			return err
		}
		color.Green("Like toggled.")
		return nil
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <email>",
	Short: "Follow or unfollow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireAuth(); err != nil {
			return err
		}

		profile := domain.NewProfile(app.client, app.sessions, app.logger)
		defer profile.Close()

		err := withSpinner("Loading profile", func() error {
			return profile.Load(cmd.Context(), args[0])
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				banner("user not found")
			} else {
				banner("could not load profile")
			}
			return err
		}

		wasFollowing := profile.IsFollowing()
		err = withSpinner("Updating follow status", func() error {
			return profile.ToggleFollow(cmd.Context())
		})
		if err != nil {
			if errors.Is(err, domain.ErrSelfFollow) {
				inline("you cannot follow yourself")
				return err
			}
			alertln("could not update follow status")
			return err
		}

		if wasFollowing {
			color.Green("Unfollowed %s", args[0])
		} else {
			color.Green("Now following %s", args[0])
		}
		return nil
	},
}

func init() {
	feedCmd.Flags().BoolVar(&followingOnly, "following", false, "show only posts from users you follow")
	rootCmd.AddCommand(feedCmd, likeCmd, followCmd)
}
