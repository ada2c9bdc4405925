// Package cmd holds the sitelift command tree. Commands build their AWS
// clients per run from the resolved region and log through the
// context-carried clog logger installed by the root command.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitelift/sitelift/internal/log"
	"github.com/sitelift/sitelift/internal/o11y"
)

const defaultRegion = "us-east-1"

var ErrConfigLoad = fmt.Errorf("failed to load configuration file")

var (
	cfgFile string
	region  string
	debug   bool
	logFile string

	// runID ties every resource created in one invocation together.
	runID string
)

var rootCmd = &cobra.Command{
	Use:   "sitelift",
	Short: "Bootstrap a web-serving EC2 instance and its surrounding AWS resources",
	Long: `sitelift provisions a single web-serving EC2 instance behind a security
group it finds or creates in the account's default VPC, publishes static sites
to uniquely named S3 buckets, and reads basic CloudWatch monitoring data.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the command tree. Errors are logged here, once, and returned
// so main can exit non-zero.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		clog.FromContext(ctx).Error("command failed", "error", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default sitelift.ini in the working directory)")
	rootCmd.PersistentFlags().StringVar(&region, "region", "", "AWS region (overrides the config file)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "sitelift.log", "logfile path, empty to disable")
}

// setup wires logging, configuration, run identity, and tracing before any
// subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	ctx, closeLog := log.Setup(cmd.Context(), log.Options{Debug: debug, FilePath: logFile})
	cobra.OnFinalize(closeLog)

	runID = uuid.NewString()
	logger := clog.FromContext(ctx).With(o11y.AttrRunID, runID, o11y.AttrCommand, cmd.Name())

	if err := loadConfig(); err != nil {
		return err
	}
	logger = logger.With(o11y.AttrRegion, awsRegion())
	ctx = clog.WithLogger(ctx, logger)
	if err := o11y.SetupTracing(ctx); err != nil {
		logger.Warn("tracing setup failed, continuing without it", "error", err)
	}

	cmd.SetContext(ctx)
	return nil
}

// loadConfig reads sitelift.ini (sections AWS/EC2/S3) into viper. A missing
// default file is fine; a file named with --config must exist.
func loadConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("ini")
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("sitelift")
		viper.SetConfigType("ini")
	}
	viper.SetEnvPrefix("SITELIFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfigLoad, err)
}

// awsRegion resolves the region for this run: flag, then config, then the
// us-east-1 default.
func awsRegion() string {
	if region != "" {
		return region
	}
	if r := viper.GetString("aws.region"); r != "" {
		return r
	}
	return defaultRegion
}
