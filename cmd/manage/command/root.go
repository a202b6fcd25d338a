package command

// root.go defines the root command of the management tool and the
// database handle every subcommand shares.

import (
	"context"
	"fmt"
	"os"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logging"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var databaseURL string // overrides DATABASE_URL

var rootCmd = &cobra.Command{
	Use:   "manage",
	Short: "manage - yamdb administration tool",
	Long: `manage runs administrative tasks against the yamdb database:
- apply schema migrations
- create a superuser
- change a user's role

The database comes from --database-url or DATABASE_URL.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Config{Level: "warn", Format: "text"})
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "database URL (default: $DATABASE_URL or sqlite://yamdb.db)")
}

// openDB opens and migrates the configured database.
func openDB() (*gorm.DB, func(), error) {
	url := databaseURL
	if url == "" {
		url = config.LoadDatabaseURL()
	}

	db, err := database.Open(url)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if err := database.Migrate(db); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, closeFn, nil
}
