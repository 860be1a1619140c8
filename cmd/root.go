// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/hantmac/setup-bendsql/cmd/checkcmd"
	"github.com/hantmac/setup-bendsql/cmd/installcmd"
	"github.com/hantmac/setup-bendsql/cmd/versionscmd"
	"github.com/hantmac/setup-bendsql/pkg/application"
	"github.com/hantmac/setup-bendsql/pkg/config"
	"github.com/hantmac/setup-bendsql/pkg/constants"
	"github.com/hantmac/setup-bendsql/pkg/prompts"
	"github.com/hantmac/setup-bendsql/pkg/utils"
	"github.com/hantmac/setup-bendsql/pkg/ux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	app *application.Bendsql

	logLevel       string
	Version        = "1.0.0"
	cfgFile        string
	nonInteractive bool
)

func NewRootCmd() *cobra.Command {
	// rootCmd represents the base command when called without any subcommands
	rootCmd := &cobra.Command{
		Use: "setup-bendsql",
		Long: `setup-bendsql - Installer for the bendsql database client.

Checks whether a functional bendsql binary is already available, and if
not, downloads the platform release asset, installs it, and verifies the
installed version.

COMMAND OVERVIEW:

  install     Install bendsql (no-op when already present and functional)
  check       Probe for an installed, functional bendsql
  versions    List released bendsql versions

QUICK START:

  # Install the pinned default version
  setup-bendsql install

  # Install a specific or the latest version
  setup-bendsql install --version v0.9.5
  setup-bendsql install --latest

For detailed command help, use: setup-bendsql <command> --help`,
		PersistentPreRunE: createApp,
		Version:           Version,
	}

	// Disable printing the completion command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.setup-bendsql/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for the application")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false,
		"Disable prompts; fail if required values are missing (also enabled when CI=1)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Show verbose output (info level logs)")
	rootCmd.PersistentFlags().Bool("debug", false, "Show debug output (debug level logs)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Show only errors (quiet mode)")

	// add sub commands
	rootCmd.AddCommand(installcmd.NewCmd(app))
	rootCmd.AddCommand(checkcmd.NewCmd(app))
	rootCmd.AddCommand(versionscmd.NewCmd(app))

	return rootCmd
}

func createApp(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" && !utils.FileExists(cfgFile) {
		return fmt.Errorf("config file %s does not exist", cfgFile)
	}

	baseDir, err := setupEnv()
	if err != nil {
		return err
	}
	log, err := setupLogging(baseDir, resolveLogLevel(cmd))
	if err != nil {
		return err
	}

	cf := config.New()

	// If --non-interactive flag is set, propagate to env so IsInteractive() sees it
	if nonInteractive {
		_ = os.Setenv(prompts.EnvNonInteractive, "1")
	}

	prompter := prompts.NewPrompterForMode(nonInteractive)
	app.Setup(baseDir, log, cf, prompter, application.NewDownloader())

	initConfig()

	return nil
}

func resolveLogLevel(cmd *cobra.Command) zapcore.Level {
	switch {
	case cmd.Flags().Changed("debug"):
		return zapcore.DebugLevel
	case cmd.Flags().Changed("verbose"):
		return zapcore.InfoLevel
	case cmd.Flags().Changed("quiet"):
		return zapcore.ErrorLevel
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return zapcore.WarnLevel
	}
	return level
}

func setupEnv() (string, error) {
	// Set base dir
	usr, err := user.Current()
	if err != nil {
		// no logger here yet
		fmt.Printf("unable to get system user %s\n", err)
		return "", err
	}
	baseDir := filepath.Join(usr.HomeDir, constants.BaseDirName)

	// Create base dir if it doesn't exist
	if !utils.DirExists(baseDir) {
		if err := os.MkdirAll(baseDir, 0o750); err != nil {
			// no logger here yet
			fmt.Printf("failed creating the basedir %s: %s\n", baseDir, err)
			return "", err
		}
	}

	// Create downloads dir if it doesn't exist
	downloadsDir := filepath.Join(baseDir, constants.DownloadsDir)
	if !utils.DirExists(downloadsDir) {
		if err := os.MkdirAll(downloadsDir, 0o750); err != nil {
			fmt.Printf("failed creating the downloads dir %s: %s\n", downloadsDir, err)
			return "", err
		}
	}

	return baseDir, nil
}

func setupLogging(baseDir string, displayLevel zapcore.Level) (*zap.SugaredLogger, error) {
	logDir := filepath.Join(baseDir, constants.LogDir)
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed creating log directory: %w", err)
	}
	logPath := filepath.Join(logDir, constants.LogFileName)

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, constants.WriteReadReadPerms)
	if err != nil {
		return nil, fmt.Errorf("failed setting up logging, exiting: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewTee(
		// the file log always keeps info level for troubleshooting
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(logFile), zapcore.InfoLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stderr), displayLevel),
	)
	log := zap.New(core).Sugar()

	// create the user facing logger as a global var
	// User output goes to stdout, logs go to stderr
	ux.NewUserLog(log, os.Stdout)
	return log, nil
}

// initConfig reads in config file and ENV variables if set.
// Priority: flags > env vars > config file > defaults
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in ~/.setup-bendsql/ directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		baseDir := filepath.Join(home, constants.BaseDirName)
		viper.AddConfigPath(baseDir)
		viper.SetConfigType(constants.DefaultConfigFileType)
		viper.SetConfigName(constants.DefaultConfigFileName)
	}

	// BENDSQL_VERSION -> version, BENDSQL_INSTALL_DIR -> install-dir
	_ = viper.BindEnv(constants.ConfigVersionKey, constants.EnvBendsqlVersion)
	_ = viper.BindEnv(constants.ConfigInstallDirKey, constants.EnvInstallDir)

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	_ = viper.ReadInConfig()
	if app.Conf.ConfigFileExists() {
		app.Log.Debugw("using config file", "config-file", app.Conf.GetConfigPath())
	}
	// No config file is normal - most users don't have one, so we silently continue
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	app = application.New()
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: %s\n", err)
		os.Exit(1)
	}
}
