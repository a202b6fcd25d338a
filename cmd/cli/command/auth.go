package command

import (
	"errors"
	"fmt"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Sign up for a confirmation code, exchange it for a token, and log out.`,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Request a confirmation code by email",
	Long: `Request a confirmation code. Running signup again with the same username
and email sends a fresh code and invalidates the previous one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")

		resp, err := client.NewHTTPClient(apiURL).Signup(cmd.Context(), username, email)
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		color.Green("✓ Confirmation code sent to %s", resp.Email)
		fmt.Printf("Next: yamdb auth token -u %s -c <code>\n", resp.Username)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange a confirmation code for an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		code, _ := cmd.Flags().GetString("code")

		accessToken, err := client.NewHTTPClient(apiURL).Token(cmd.Context(), username, code)
		if err != nil {
			return fmt.Errorf("token exchange failed: %w", err)
		}

		if err := authentication.StoreTokens(&authentication.StoredCredentials{
			AccessToken: accessToken,
			Username:    username,
			Server:      apiURL,
		}); err != nil {
			return fmt.Errorf("could not store token in keyring: %w", err)
		}

		color.Green("✓ Logged in as %s", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(apiURL); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
		color.Green("✓ Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the profile of the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := requireLogin()
		if err != nil {
			return err
		}
		me, err := httpClient.Me(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Username: %s\n", me.Username)
		fmt.Printf("Email:    %s\n", me.Email)
		fmt.Printf("Role:     %s\n", me.Role)
		if me.Bio != "" {
			fmt.Printf("Bio:      %s\n", me.Bio)
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(signupCmd, tokenCmd, logoutCmd, whoamiCmd)

	signupCmd.Flags().StringP("username", "u", "", "username for the account")
	signupCmd.Flags().StringP("email", "e", "", "email the code is sent to")
	_ = signupCmd.MarkFlagRequired("username")
	_ = signupCmd.MarkFlagRequired("email")

	tokenCmd.Flags().StringP("username", "u", "", "username the code was issued for")
	tokenCmd.Flags().StringP("code", "c", "", "confirmation code from the email")
	_ = tokenCmd.MarkFlagRequired("username")
	_ = tokenCmd.MarkFlagRequired("code")

	rootCmd.AddCommand(authCmd)
}
