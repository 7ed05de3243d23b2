package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/devconnect/devconnect-go/internal/domain"
)

var (
	titleColor  = color.New(color.FgCyan, color.Bold)
	authorColor = color.New(color.FgGreen)
	mutedColor  = color.New(color.FgHiBlack)
)

// withSpinner shows a loading indicator on stderr while fn runs.
func withSpinner(label string, fn func() error) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + label
	s.Start()
	defer s.Stop()
	return fn()
}

// banner prints a page-level error banner, used for failed reads.
func banner(msg string) {
	fmt.Fprintln(os.Stderr, color.RedString("✖ %s", msg))
}

// alertln prints an alert for a failed write. The prior state is intact;
// the user retries manually.
func alertln(msg string) {
	fmt.Fprintln(os.Stderr, color.YellowString("! %s", msg))
}

// inline prints a validation message; no request was sent.
func inline(msg string) {
	fmt.Fprintln(os.Stderr, color.YellowString("%s", msg))
}

func renderPosts(posts []domain.Post, self *domain.User, isFollowing func(string) bool) {
	if len(posts) == 0 {
		mutedColor.Println("No posts yet.")
		return
	}

	for _, post := range posts {
		author := post.UserName
		if author == "" {
			author = post.UserEmail
		}

		var marks string
		if self != nil {
			if post.LikedBy(self.Email) {
				marks += color.RedString(" ♥")
			}
			if isFollowing != nil && isFollowing(post.UserEmail) {
				marks += authorColor.Sprint(" [following]")
			}
		}

		titleColor.Println(post.Title)
		fmt.Printf("  %s%s\n", authorColor.Sprintf("%s <%s>", author, post.UserEmail), marks)
		mutedColor.Printf("  %s · %d likes · %d comments · id %s\n",
			post.CreatedAt.Local().Format("Jan 2 2006 15:04"),
			len(post.Likes), len(post.Comments), post.ID)
		fmt.Printf("  %s\n\n", post.Content)
	}
}

func renderComments(post domain.Post) {
	titleColor.Println(post.Title)
	if len(post.Comments) == 0 {
		mutedColor.Println("No comments yet.")
		return
	}

	for _, comment := range post.Comments {
		fmt.Printf("%s %s\n", authorColor.Sprintf("%s:", comment.UserEmail), comment.Content)
		mutedColor.Printf("  %s · id %s\n", comment.CreatedAt.Local().Format("Jan 2 2006 15:04"), comment.ID)
		for _, reply := range comment.Replies {
			fmt.Printf("    %s %s\n", authorColor.Sprintf("%s:", reply.UserEmail), reply.Content)
			mutedColor.Printf("      %s · id %s\n", reply.CreatedAt.Local().Format("Jan 2 2006 15:04"), reply.ID)
		}
	}
}

func renderProfileStats(profile *domain.Profile) {
	followers, following := profile.FollowCounts()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Followers", "Following", "Posts"})
	table.Append([]string{
		strconv.Itoa(followers),
		strconv.Itoa(following),
		strconv.Itoa(len(profile.Posts())),
	})
	table.Render()
}
