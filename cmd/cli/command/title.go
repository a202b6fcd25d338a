package command

import (
	"fmt"
	"strings"

	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Browse titles",
}

var listTitlesCmd = &cobra.Command{
	Use:   "list",
	Short: "List titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		var q client.TitleQuery
		q.Category, _ = cmd.Flags().GetString("category")
		q.Genre, _ = cmd.Flags().GetString("genre")
		q.Name, _ = cmd.Flags().GetString("name")
		q.Year, _ = cmd.Flags().GetInt("year")
		q.Page, _ = cmd.Flags().GetInt("page")

		page, err := GetAuthenticatedClient().ListTitles(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}
		if len(page.Results) == 0 {
			fmt.Println("No titles found.")
			return nil
		}

		fmt.Printf("Titles (page %d/%d, total %d):\n\n", page.Page, page.TotalPages, page.Count)
		for _, t := range page.Results {
			fmt.Printf("%5d  %s (%d)  rating %s\n", t.ID, t.Name, t.Year, ratingText(t.Rating))
		}
		return nil
	},
}

var getTitleCmd = &cobra.Command{
	Use:   "get [title-id]",
	Short: "Show one title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("title", args[0])
		if err != nil {
			return err
		}

		t, err := GetAuthenticatedClient().GetTitle(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get title: %w", err)
		}
		printTitle(t)
		return nil
	},
}

func ratingText(r *int) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%d/10", *r)
}

func printTitle(t *dto.TitleResponse) {
	fmt.Printf("ID:       %d\n", t.ID)
	fmt.Printf("Name:     %s\n", t.Name)
	fmt.Printf("Year:     %d\n", t.Year)
	fmt.Printf("Rating:   %s\n", ratingText(t.Rating))
	if t.Category != nil {
		fmt.Printf("Category: %s\n", t.Category.Name)
	}
	if len(t.Genre) > 0 {
		names := make([]string, 0, len(t.Genre))
		for _, g := range t.Genre {
			names = append(names, g.Name)
		}
		fmt.Printf("Genres:   %s\n", strings.Join(names, ", "))
	}
	if t.Description != "" {
		fmt.Printf("\n%s\n", t.Description)
	}
}

func init() {
	listTitlesCmd.Flags().String("category", "", "category slug")
	listTitlesCmd.Flags().String("genre", "", "genre slug")
	listTitlesCmd.Flags().String("name", "", "part of the name")
	listTitlesCmd.Flags().Int("year", 0, "release year")
	listTitlesCmd.Flags().Int("page", 1, "page number")

	titleCmd.AddCommand(listTitlesCmd, getTitleCmd)
	rootCmd.AddCommand(titleCmd)
}
