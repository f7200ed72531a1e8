package main

import (
	"github.com/spf13/cobra"

	"github.com/sandevgo/vidquery/internal/config"
	"github.com/sandevgo/vidquery/internal/providers/embed"
	"github.com/sandevgo/vidquery/internal/service/ingest"
	"github.com/sandevgo/vidquery/internal/storage/sqlite"
	"github.com/sandevgo/vidquery/pkg/log"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest transcript export files into the local store",
	Long:  `Reads every *.json transcript export in the given directory, embeds each record and stores it in the video database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		logger := log.FromCtx(ctx)

		if err := initEnv(ctx); err != nil {
			return err
		}

		appCfg := config.NewAppConfig(ctx)
		providersCfg := config.NewProvidersConfig(ctx)

		db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
		if err != nil {
			return err
		}
		defer db.Close()

		embedder := embed.NewClient(providersCfg.EmbedBaseURL, providersCfg.EmbedAPIKey, providersCfg.EmbedModel)

		ing, err := ingest.New(sqlite.NewVideosRepo(db), embedder, appCfg.IngestTokenBudget)
		if err != nil {
			return err
		}

		count, err := ing.IngestDir(ctx, ingestDir)
		if err != nil {
			return err
		}

		logger.Info().Int("count", count).Str("dir", ingestDir).Msg("ingest complete")
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", ".", "directory with transcript export json files")
	rootCmd.AddCommand(ingestCmd)
}
