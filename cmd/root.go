// Package cmd wires the oxiforms command line.
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/config"
	"github.com/parisxmas/OxiDB/OxiForms/internal/logging"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "oxiforms",
	Short: "Form builder backend and terminal form filler",
	Long: `oxiforms serves published Form.io forms and stores their submissions
in OxiDB, Postgres or memory. The fill command walks a published form
as a step-by-step wizard in the terminal.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(fillCmd)
}

// setup loads the configuration and builds the logger. The returned func
// flushes the logger.
func setup() (*config.Config, *zap.Logger, func(), error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	log, cleanup, err := logging.New(cfg.Logging, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, cleanup, nil
}
