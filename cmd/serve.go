package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/internal/api"
	"github.com/ortelius/advisor-backend/internal/services"
)

// serveCmd starts the HTTP API over the loaded knowledge graph.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST and GraphQL API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := catalog.Logger()

		store, assessor, err := buildAssessor()
		if err != nil {
			return err
		}

		app := api.NewFiberApp(store, assessor)
		port := viper.GetString("port")
		logger.Sugar().Infof("Listening on :%s", port)
		return app.Listen(":" + port)
	},
}

// buildAssessor loads the knowledge graph and scoring profile configured on
// the root command and assembles the assessment pipeline.
func buildAssessor() (*catalog.Store, *services.Assessor, error) {
	logger := catalog.Logger()

	dir := viper.GetString("kg.dir")
	if url := viper.GetString("kg.url"); url != "" {
		if err := catalog.FetchArtifacts(url, dir); err != nil {
			return nil, nil, err
		}
	}

	store, err := catalog.Load(dir)
	if err != nil {
		return nil, nil, err
	}

	profile, err := services.LoadProfile(viper.GetString("profile"))
	if err != nil {
		return nil, nil, err
	}
	logger.Sugar().Debugf("Scoring profile: %+v", profile)

	return store, services.NewAssessor(store, profile), nil
}

func init() {
	serveCmd.Flags().String("port", "8080", "port to listen on")
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}
