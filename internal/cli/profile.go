package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devconnect/devconnect-go/internal/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile [email]",
	Short: "Show a user's profile and posts",
	Long:  "Show a user's profile and posts. With no argument, shows your own profile.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var email string
		if len(args) == 1 {
			email = args[0]
		} else {
			user, err := requireAuth()
			if err != nil {
				return err
			}
			email = user.Email
		}

		profile := domain.NewProfile(app.client, app.sessions, app.logger)
		defer profile.Close()

		err := withSpinner("Loading profile", func() error {
			return profile.Load(cmd.Context(), email)
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				banner("user not found")
			} else {
				banner("could not load profile")
			}
			return err
		}

		user := profile.User()
		name := user.Name
		if name == "" {
			name = "User"
		}
		titleColor.Printf("%s <%s>\n", name, user.Email)
		if profile.IsFollowing() {
			authorColor.Println("You follow this user.")
		}
		fmt.Println()

		renderProfileStats(profile)
		fmt.Println()
		renderPosts(profile.Posts(), app.sessions.Current(), nil)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
