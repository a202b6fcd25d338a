package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

var genreCmd = &cobra.Command{
	Use:   "genre",
	Short: "List genres",
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "List categories",
}

// taxonomyListCmd builds the list subcommand for "genres" or "categories".
func taxonomyListCmd(kind string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + kind + ", optionally filtered by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")

			page, err := GetAuthenticatedClient().ListTaxonomy(cmd.Context(), kind, search)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", kind, err)
			}
			if len(page.Results) == 0 {
				fmt.Printf("No %s found.\n", kind)
				return nil
			}

			fmt.Printf("%d %s:\n\n", page.Count, kind)
			for _, t := range page.Results {
				fmt.Printf("%-20s %s\n", t.Slug, t.Name)
			}
			return nil
		},
	}
	cmd.Flags().String("search", "", "filter by name")
	return cmd
}

func init() {
	genreCmd.AddCommand(taxonomyListCmd("genres"))
	categoryCmd.AddCommand(taxonomyListCmd("categories"))
	rootCmd.AddCommand(genreCmd, categoryCmd)
}
