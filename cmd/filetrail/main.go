package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filetrail/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "filetrail",
	Short:   "File metadata API with presigned object storage URLs",
	Long: `Filetrail records metadata about files users upload to object storage
and hands out short-lived presigned URLs to read and write them. Requests
are authenticated with bearer tokens issued by an OpenID Connect provider.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, merged left to right (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("env", "", "environment: dev, prod (default: dev, env: FILETRAIL_ENV)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: postgres, sqlite (default: postgres, env: FILETRAIL_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (env: FILETRAIL_DATABASE_DSN, DATABASE_URL)")
	rootCmd.PersistentFlags().String("bucket", "", "object storage bucket (env: FILETRAIL_STORAGE_BUCKET, S3_BUCKET)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
