package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geziefer/docchat/config"
	"github.com/geziefer/docchat/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents using retrieval-augmented generation",
	Long: `docchat ingests documents, splits them into overlapping segments, indexes
them in a vector store and answers questions grounded in the most relevant
segments, citing the source files it used.

Example usage:
  docchat ingest docs/**/*.md          # Index documents
  docchat ask -q "how do I deploy?"    # Ask a question
  docchat serve                        # Start the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if verbose {
			logger.SetLevel(logger.LevelDebug)
		} else {
			logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docchat.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
