package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var checkGroupsCmd = &cobra.Command{
	Use:   "check-groups",
	Short: "Ensure every configured group exists",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {

		// The startup hook in commonSetUp already ran the check once
		commonSetUp()
		defer userDB.Close()

		failures := runGroupCheck(context.Background())
		if len(failures) > 0 {
			userDB.Close()
			os.Exit(1)
		}

		log.Info().Int("groups", len(appCfg.Groups.Custom)).Msg("All configured groups exist")
	},
}

func init() {
	rootCmd.AddCommand(checkGroupsCmd)
}
