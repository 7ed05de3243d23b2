package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devconnect/devconnect-go/internal/api"
)

var (
	signupName  string
	signupEmail string
	loginEmail  string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a DevConnect account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := promptIfEmpty(signupName, "Name: ")
		if err != nil {
			return err
		}
		email, err := promptIfEmpty(signupEmail, "Email: ")
		if err != nil {
			return err
		}
		password, err := promptPassword()
		if err != nil {
			return err
		}
		if name == "" || email == "" || password == "" {
			inline("please fill out all fields")
			return fmt.Errorf("missing required fields")
		}

		var result *api.AuthResult
		err = withSpinner("Creating account", func() error {
			var err error
			result, err = app.client.Register(cmd.Context(), name, email, password)
			return err
		})
		if err != nil {
			return err
		}

		if err := app.sessions.Set(result.User, result.Token); err != nil {
			return err
		}
		color.Green("Welcome, %s!", result.User.Name)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to DevConnect",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := promptIfEmpty(loginEmail, "Email: ")
		if err != nil {
			return err
		}
		password, err := promptPassword()
		if err != nil {
			return err
		}
		if email == "" || password == "" {
			inline("please fill out all fields")
			return fmt.Errorf("missing required fields")
		}

		var result *api.AuthResult
		err = withSpinner("Logging in", func() error {
			var err error
			result, err = app.client.Login(cmd.Context(), email, password)
			return err
		})
		if err != nil {
			return err
		}

		if err := app.sessions.Set(result.User, result.Token); err != nil {
			return err
		}
		color.Green("Logged in as %s", result.User.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.sessions.Clear(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		user := app.sessions.Current()
		if user == nil {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s <%s>\n", user.Name, user.Email)
		if app.sessions.Expired() {
			alertln("session token has expired, run 'devconnect login' again")
		}
		return nil
	},
}

func init() {
	signupCmd.Flags().StringVar(&signupName, "name", "", "display name")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")

	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd)
}

func promptIfEmpty(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}
