package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/targetforge/internal/config"
	"github.com/conneroisu/targetforge/internal/errors"
	"github.com/conneroisu/targetforge/internal/logging"
)

// ConfigFileEnv names a configuration file when --config is not given.
const ConfigFileEnv = config.EnvPrefix + "_CONFIG_FILE"

var (
	cfgFile    string
	configPath string
	logLevel   string
	logFormat  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "targetforge",
	Short: "Build one front-end source tree for many deployment targets",
	Long: `targetforge projects a single front-end source tree into several
deployment shapes: a browser bundle, a server-rendered bundle, a progressive
web app, a desktop shell, a mobile shell and a browser extension.

One declarative configuration file describes every target. Each command
resolves the configuration for the selected target into a flat build
directive and drives esbuild to produce its bundles. The desktop shell's
preload bundle may import native ".node" addons; they are copied next to
the bundle and loaded at run time.

Quick Start:
  targetforge targets                          List deployment targets
  targetforge resolve --target web             Show the resolved directive
  targetforge build --target desktop-shell     Bundle the desktop shell
  targetforge watch --target web               Rebuild on change`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		errors.NewHandler(newLogger(rootCmd.ErrOrStderr())).Handle(context.Background(), err)
		if suggestions := errors.Suggest(err); len(suggestions) > 0 {
			fmt.Fprint(rootCmd.ErrOrStderr(), errors.FormatSuggestions("", suggestions))
		}
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .targetforge.{yml,yaml,json,jsonc}, can also use "+ConfigFileEnv+")")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// normalizeFlagName accepts underscores in flag names, so --log_level
// works like --log-level.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// initConfig picks the configuration file and enables environment
// overrides. The file itself is read by loadSpec so that errors reach the
// command.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag
//  2. TARGETFORGE_CONFIG_FILE environment variable
//  3. .targetforge.{yml,yaml,json,jsonc} in the current directory
func initConfig() {
	switch {
	case cfgFile != "":
		configPath = cfgFile
	case os.Getenv(ConfigFileEnv) != "":
		configPath = os.Getenv(ConfigFileEnv)
	default:
		configPath, _ = config.Find(".")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// loadSpec reads the selected configuration file, if any, and decodes the
// global Viper state.
func loadSpec() (*config.Spec, error) {
	if configPath != "" {
		if err := config.ReadInto(viper.GetViper(), configPath); err != nil {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "reading configuration", err)
		}
	}
	if err := config.BindEnv(viper.GetViper()); err != nil {
		return nil, errors.NewInternalError("binding environment overrides", err)
	}
	return config.Load()
}

// projectDir is the directory that paths in the configuration are
// relative to.
func projectDir() (string, error) {
	if configPath != "" {
		return filepath.Abs(filepath.Dir(configPath))
	}
	return os.Getwd()
}

func newLogger(w io.Writer) logging.Logger {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = logging.LevelInfo
	}
	format := viper.GetString("log-format")
	if format == "" {
		format = logFormat
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: format,
		Output: w,
	})
}

func commandLogger(cmd *cobra.Command) logging.Logger {
	return newLogger(cmd.ErrOrStderr()).WithComponent(cmd.Name())
}
