package command

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment commands",
	Long:  `List, post and delete comments on a review.`,
}

// reviewArgs parses the [title-id] [review-id] pair every comment command starts with.
func reviewArgs(args []string) (titleID, reviewID int64, err error) {
	if titleID, err = parseID("title", args[0]); err != nil {
		return 0, 0, err
	}
	if reviewID, err = parseID("review", args[1]); err != nil {
		return 0, 0, err
	}
	return titleID, reviewID, nil
}

var listCommentsCmd = &cobra.Command{
	Use:   "list [title-id] [review-id]",
	Short: "List the comments on a review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, reviewID, err := reviewArgs(args)
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")

		result, err := GetAuthenticatedClient().ListComments(cmd.Context(), titleID, reviewID, page)
		if err != nil {
			return fmt.Errorf("failed to list comments: %w", err)
		}
		if len(result.Results) == 0 {
			fmt.Println("No comments yet.")
			return nil
		}

		for _, c := range result.Results {
			fmt.Printf("#%d %s (%s)\n", c.ID, c.Author, c.PubDate.Format("2006-01-02 15:04"))
			fmt.Println(c.Text)
			fmt.Println(strings.Repeat("-", 50))
		}
		return nil
	},
}

var addCommentCmd = &cobra.Command{
	Use:   "add [title-id] [review-id] [text]",
	Short: "Comment on a review",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, reviewID, err := reviewArgs(args)
		if err != nil {
			return err
		}

		httpClient, err := requireLogin()
		if err != nil {
			return err
		}
		c, err := httpClient.CreateComment(cmd.Context(), titleID, reviewID, strings.Join(args[2:], " "))
		if err != nil {
			return fmt.Errorf("failed to post comment: %w", err)
		}

		color.Green("✓ Comment #%d posted", c.ID)
		return nil
	},
}

var deleteCommentCmd = &cobra.Command{
	Use:   "delete [title-id] [review-id] [comment-id]",
	Short: "Delete a comment (author, moderator or admin)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, reviewID, err := reviewArgs(args)
		if err != nil {
			return err
		}
		commentID, err := parseID("comment", args[2])
		if err != nil {
			return err
		}

		httpClient, err := requireLogin()
		if err != nil {
			return err
		}
		if err := httpClient.DeleteComment(cmd.Context(), titleID, reviewID, commentID); err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}

		color.Green("✓ Comment #%d deleted", commentID)
		return nil
	},
}

func init() {
	listCommentsCmd.Flags().Int("page", 1, "page number")

	commentCmd.AddCommand(listCommentsCmd, addCommentCmd, deleteCommentCmd)
	rootCmd.AddCommand(commentCmd)
}
