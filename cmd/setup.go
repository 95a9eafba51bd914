package cmd

import (
	"context"

	awsclient "github.com/EO-DataHub/eodhp-user-sync/internal/aws"
	"github.com/EO-DataHub/eodhp-user-sync/internal/events"
	"github.com/EO-DataHub/eodhp-user-sync/internal/metrics"
	"github.com/EO-DataHub/eodhp-user-sync/internal/notify"
	"github.com/EO-DataHub/eodhp-user-sync/internal/roster"
	"github.com/EO-DataHub/eodhp-user-sync/internal/usersync"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var syncMetrics = metrics.NewSyncMetrics(prometheus.DefaultRegisterer)

// newSynchronizer wires the roster client, store, mailer and event publisher
// together. The returned cleanup closes the publisher.
func newSynchronizer(ctx context.Context) (*usersync.Synchronizer, func()) {
	awsCfg, err := awsclient.LoadAWSConfig(ctx, appCfg.AWS.Region)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}

	token := appCfg.Roster.Token
	if appCfg.Roster.TokenSecretName != "" {
		secrets := awsclient.NewSecretsManagerClient(awsCfg)
		token, err = awsclient.GetSecretString(ctx, secrets, appCfg.Roster.TokenSecretName)
		if err != nil {
			// The fetch fails without a token and is escalated from there
			log.Error().Err(err).Msg("Failed to read roster token secret")
		}
	}

	rosterClient := roster.NewClient(appCfg.Roster.URL, appCfg.Roster.Login, token, appCfg.Roster.Timeout)

	mailLogger := log.With().Str("component", "notify").Logger()
	mailer := &notify.AdminMailer{
		Client:         awsclient.NewSESClient(awsCfg),
		Sender:         appCfg.Email.Sender,
		Administrators: appCfg.Email.Administrators,
		Log:            &mailLogger,
	}

	syncLogger := log.With().Str("component", "usersync").Logger()
	synchronizer := usersync.NewSynchronizer(appCfg.Sync, rosterClient, userDB, mailer, &syncLogger)
	synchronizer.Metrics = syncMetrics

	cleanup := func() {}
	if appCfg.Pulsar.URL != "" && appCfg.Pulsar.TopicProducer != "" {
		publisher, err := events.NewEventPublisher(appCfg.Pulsar.URL, appCfg.Pulsar.TopicProducer)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event publisher")
		}
		synchronizer.Events = publisher
		cleanup = publisher.Close
	}

	return synchronizer, cleanup
}
