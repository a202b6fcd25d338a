package command

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review commands",
	Long:  `List the reviews of a title, post your own review (one per title) and delete reviews.`,
}

var listReviewsCmd = &cobra.Command{
	Use:   "list [title-id]",
	Short: "List the reviews of a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID("title", args[0])
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")

		result, err := GetAuthenticatedClient().ListReviews(cmd.Context(), titleID, page)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		if len(result.Results) == 0 {
			fmt.Println("No reviews yet.")
			return nil
		}

		fmt.Printf("Reviews for title %d (page %d/%d, total %d):\n\n", titleID, result.Page, result.TotalPages, result.Count)
		for _, r := range result.Results {
			fmt.Printf("#%d by %s, %d/10, %s\n", r.ID, r.Author, r.Score, r.PubDate.Format("2006-01-02 15:04"))
			fmt.Println(r.Text)
			fmt.Println(strings.Repeat("-", 50))
		}
		return nil
	},
}

var addReviewCmd = &cobra.Command{
	Use:   "add [title-id] [text]",
	Short: "Review a title",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID("title", args[0])
		if err != nil {
			return err
		}
		score, _ := cmd.Flags().GetInt("score")
		if score < 1 || score > 10 {
			return fmt.Errorf("score must be between 1 and 10")
		}

		httpClient, err := requireLogin()
		if err != nil {
			return err
		}
		r, err := httpClient.CreateReview(cmd.Context(), titleID, strings.Join(args[1:], " "), score)
		if err != nil {
			return fmt.Errorf("failed to post review: %w", err)
		}

		color.Green("✓ Review #%d posted (%d/10)", r.ID, r.Score)
		return nil
	},
}

var deleteReviewCmd = &cobra.Command{
	Use:   "delete [title-id] [review-id]",
	Short: "Delete a review (author, moderator or admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID("title", args[0])
		if err != nil {
			return err
		}
		reviewID, err := parseID("review", args[1])
		if err != nil {
			return err
		}

		httpClient, err := requireLogin()
		if err != nil {
			return err
		}
		if err := httpClient.DeleteReview(cmd.Context(), titleID, reviewID); err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}

		color.Green("✓ Review #%d deleted", reviewID)
		return nil
	},
}

func init() {
	listReviewsCmd.Flags().Int("page", 1, "page number")
	addReviewCmd.Flags().IntP("score", "s", 0, "score from 1 to 10")
	_ = addReviewCmd.MarkFlagRequired("score")

	reviewCmd.AddCommand(listReviewsCmd, addReviewCmd, deleteReviewCmd)
	rootCmd.AddCommand(reviewCmd)
}
