// Package cli implements the assessment console commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/assessment-console/pkg/apiclient"
	"github.com/ekaya-inc/assessment-console/pkg/auth"
	"github.com/ekaya-inc/assessment-console/pkg/config"
	"github.com/ekaya-inc/assessment-console/pkg/logging"
	"github.com/ekaya-inc/assessment-console/pkg/transport"
)

// app is the wiring shared by every command, built once before the command runs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	tokens *auth.FileTokenStore
	api    *apiclient.Client
	out    io.Writer
}

type rootOptions struct {
	configFile string
	apiURL     string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "assessment-console",
		Short:         "Console for BI migration assessments",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, opts, version)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Assessment API root (overrides config and ASSESSMENT_API_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newHealthCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newCreateCmd(a),
		newUploadCmd(a),
		newRunCmd(a),
		newStatusCmd(a),
		newObjectsCmd(a),
		newObjectCmd(a),
		newGraphCmd(a),
		newErrorsCmd(a),
		newReportCmd(a),
		newExportCmd(a),
		newServeMCPCmd(a, version),
	)

	return rootCmd
}

// Execute runs the command tree and returns the process exit code.
func Execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) init(cmd *cobra.Command, opts *rootOptions, version string) error {
	// .env.local wins over .env; both are optional.
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	if opts.apiURL != "" {
		if err := os.Setenv("ASSESSMENT_API_URL", opts.apiURL); err != nil {
			return err
		}
	}
	if opts.logLevel != "" {
		if err := os.Setenv("LOG_LEVEL", opts.logLevel); err != nil {
			return err
		}
	}

	cfg, err := config.LoadFile(opts.configFile, version)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.out = cmd.OutOrStdout()
	a.tokens = auth.NewFileTokenStore(cfg.TokenFile)
	a.api = apiclient.New(transport.NewClient(cfg.APIURL, a.tokens, logger), logger)

	logger.Debug("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("api_base", cfg.APIBaseURL()),
		zap.String("token_file", cfg.TokenFile),
		zap.String("version", cfg.Version))
	return nil
}
