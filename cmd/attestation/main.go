package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/onflow/flow-attestation/config"
)

var (
	flagConfigFile string
	// configFlags holds only configuration keys, the config file flag and
	// cobra's help flag are not part of the configuration
	configFlags = pflag.NewFlagSet("config", pflag.ExitOnError)
)

var rootCmd = &cobra.Command{
	Use:   "attestation",
	Short: "attestation consensus node",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the attestation node",
	RunE:  runServe,
}

var validateCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "load and validate the configuration without starting the node",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configFlags, flagConfigFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid, REST API on %s, quorum %d\n",
			cfg.HTTP.ListenAddress, cfg.Consensus.RequiredQuorum)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "path to a YAML config file")
	config.InitializePFlagSet(configFlags, config.DefaultConfig())
	serveCmd.Flags().AddFlagSet(configFlags)
	validateCmd.Flags().AddFlagSet(configFlags)
	rootCmd.AddCommand(serveCmd, validateCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFlags, flagConfigFile)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	log.Logger = logger

	node, err := NewNode(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("could not initialize attestation node")
		return err
	}
	return node.Run()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("attestation node failed")
		os.Exit(1)
	}
}
