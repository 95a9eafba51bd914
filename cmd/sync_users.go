package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var syncUsersCmd = &cobra.Command{
	Use:   "sync-users",
	Short: "Synchronise users from the identity service roster",
	Long: `Fetch the user roster, create or update users of the allowed domains and link
them to the linkage group. Administrators are emailed when the run fails.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer userDB.Close()

		synchronizer, cleanup := newSynchronizer(context.Background())
		defer cleanup()

		report, err := synchronizer.Sync(context.Background())
		if err != nil {
			// Already logged and escalated
			cleanup()
			userDB.Close()
			os.Exit(1)
		}

		log.Info().
			Int("created", report.Created).
			Int("updated", report.Updated).
			Int("skipped", report.Skipped).
			Msg("User sync finished")
	},
}

func init() {
	rootCmd.AddCommand(syncUsersCmd)
}
