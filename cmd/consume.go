package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/EO-DataHub/eodhp-user-sync/internal/events"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Run the Pulsar consumer that triggers a user sync for every request",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer userDB.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		synchronizer, cleanup := newSynchronizer(ctx)
		defer cleanup()

		logger := log.With().Str("component", "consumer").Logger()
		consumer, err := events.NewEventConsumer(appCfg.Pulsar.URL, appCfg.Pulsar.TopicConsumer, appCfg.Pulsar.Subscription, &logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event consumer")
		}
		defer consumer.Close()

		log.Info().Str("topic", appCfg.Pulsar.TopicConsumer).Msg("Waiting for sync requests")

		err = consumer.Consume(ctx, func(ctx context.Context, req events.SyncRequest) error {
			// Failed runs are escalated by Sync and not redelivered
			if _, err := synchronizer.Sync(ctx); err != nil {
				logger.Warn().Str("requested_by", req.RequestedBy).Msg("Requested sync failed")
			}
			return nil
		})
		if err != nil {
			log.Error().Err(err).Msg("Consumer stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}
