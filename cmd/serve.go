package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/EO-DataHub/eodhp-user-sync/api/handlers"
	"github.com/EO-DataHub/eodhp-user-sync/api/middleware"
	"github.com/EO-DataHub/eodhp-user-sync/api/services"
	docs "github.com/EO-DataHub/eodhp-user-sync/docs"
	"github.com/EO-DataHub/eodhp-user-sync/internal/authn"
	"github.com/EO-DataHub/eodhp-user-sync/internal/checks"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title EODHP User Sync API
// @version v1
// @description This is the API for the EODHP user roster synchronisation service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer userDB.Close()

		synchronizer, cleanup := newSynchronizer(context.Background())
		defer cleanup()

		checkLogger := log.With().Str("component", "checks").Logger()
		checker := checks.NewGroupChecker(userDB, &checkLogger)
		checker.Metrics = syncMetrics

		service := &services.Service{
			Config:  appCfg,
			DB:      userDB,
			Sync:    synchronizer,
			Checker: checker,
		}

		r := mux.NewRouter()
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

		// Register the routes
		api := r.PathPrefix(appCfg.BasePath).Subrouter()

		// Apply the middleware to the API routes
		api.Use(middleware.WithLogger)
		api.Use(middleware.JWTMiddleware)

		// Group routes
		api.HandleFunc("/groups", handlers.GetGroups(service)).Methods(http.MethodGet)
		api.HandleFunc("/groups/{group-name}/users", handlers.GetGroupMembers(service)).Methods(http.MethodGet)

		// Administrator routes
		admin := api.NewRoute().Subrouter()
		admin.Use(middleware.RequireRole(authn.HubAdminRole))
		admin.HandleFunc("/groups/check", handlers.CheckGroups(service)).Methods(http.MethodPost)
		admin.HandleFunc("/users/sync", handlers.SyncUsers(service)).Methods(http.MethodPost)

		// Docs
		docs.SwaggerInfo.Host = appCfg.Host
		docs.SwaggerInfo.BasePath = appCfg.BasePath
		r.PathPrefix(appCfg.DocsPath).Handler(httpSwagger.Handler(
			httpSwagger.URL(path.Join(appCfg.DocsPath, "/doc.json")),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("none"),
			httpSwagger.DomID("swagger-ui"),
		)).Methods(http.MethodGet)

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", host, port),
			r); err != nil {

			log.Error().Err(err).Msg("could not start server")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}
