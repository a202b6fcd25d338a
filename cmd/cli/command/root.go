package command

// root.go defines the root command and the flags every subcommand shares.

import (
	"context"
	"errors"
	"os"
	"strconv"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var apiURL string

var errNotLoggedIn = errors.New("not logged in, run 'yamdb auth signup' and then 'yamdb auth token'")

var rootCmd = &cobra.Command{
	Use:   "yamdb",
	Short: "yamdb - command line client for the yamdb review catalog",
	Long: `yamdb talks to a yamdb API server. Browse titles, genres and categories
anonymously; sign up with an emailed confirmation code to post reviews and comments.

Use "yamdb [command] --help" to see the options of a command.`,
	SilenceUsage: true,
}

// Execute is called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}
}

func init() {
	defaultURL := os.Getenv("YAMDB_API")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080/api/v1"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "API base URL")
}

// GetAuthenticatedClient returns a client carrying the stored token, or an
// anonymous one when nothing is stored for this server.
func GetAuthenticatedClient() *client.HTTPClient {
	httpClient := client.NewHTTPClient(apiURL)
	if creds, err := authentication.GetTokens(apiURL); err == nil {
		httpClient.SetToken(creds.AccessToken)
	}
	return httpClient
}

// requireLogin is GetAuthenticatedClient for commands that write.
func requireLogin() (*client.HTTPClient, error) {
	httpClient := GetAuthenticatedClient()
	if !httpClient.Authenticated() {
		return nil, errNotLoggedIn
	}
	return httpClient, nil
}

func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + what + " ID: " + s)
	}
	return id, nil
}
