/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the mockjson commands. Provides configuration loading,
logging setup and construction of the generation context used by every command.
*/

package commands

import (
	"fmt"
	"io"

	"github.com/kleascm/mockjson/pkg/config"
	"github.com/kleascm/mockjson/pkg/logging"
	"github.com/kleascm/mockjson/pkg/pipeline"
	"github.com/kleascm/mockjson/pkg/policy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is reported by --version and stamped on run metrics
const Version = "1.0.0"

// Settings holds configuration, environment overrides and bound flags
var Settings = config.New()

// ResetSettings replaces Settings with a fresh instance
func ResetSettings() *viper.Viper {
	Settings = config.New()
	return Settings
}

// LoadConfig loads configuration from files and environment
func LoadConfig() (*config.Config, error) {
	if err := config.Load(Settings, Settings.GetString("config")); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg, err := config.Decode(Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SetupLogging configures the logging system
func SetupLogging(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// session is one command's configuration, logger and generation context
type session struct {
	cfg    *config.Config
	logger *logging.Logger
	ctx    *pipeline.Context
}

func (s *session) Close() {
	if s.logger != nil {
		s.logger.Close()
	}
}

// openSession loads configuration and wires the generation context
func openSession() (*session, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := SetupLogging(cfg)
	if err != nil {
		return nil, err
	}

	ctx, err := pipeline.New(pipeline.Options{
		Config:   cfg,
		Policies: policy.NewStore(Settings, config.PolicyFile(Settings)),
		Logger:   logger,
	})
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}
	return &session{cfg: cfg, logger: logger, ctx: ctx}, nil
}

func banner(w io.Writer, title string) {
	fmt.Fprintf(w, "mockjson - %s\n", title)
	fmt.Fprintln(w, "==============================")
	fmt.Fprintln(w)
}

// statusWriter is where progress goes; stderr when records stream to stdout
func statusWriter(cmd *cobra.Command, recordsToStdout bool) io.Writer {
	if recordsToStdout {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
