// Package cli implements the bookpurr command tree.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/bookpurr/internal/appconfig"
	"github.com/sevigo/bookpurr/internal/logging"
	"github.com/sevigo/bookpurr/textsplitter"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	v        *viper.Viper
	cfgFile  string
	cfg      appconfig.Config
	logger   *slog.Logger
	closeLog func() error
}

// persistentKeys are the root flags bound to viper keys of the same name.
var persistentKeys = []string{"debug", "logFile", "maxUnits", "backend", "workers", "cache"}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: slog.Default()}

	root := &cobra.Command{
		Use:           "bookpurr",
		Short:         "bookpurr narrates e-books with a cloned reference voice",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./bookpurr.yaml)")
	pf.Bool("debug", false, "enable debug logging")
	pf.String("logFile", "", "also append logs to this file")
	pf.Int("maxUnits", textsplitter.DefaultMaxUnits, "maximum units (words or CJK characters) per chunk")
	pf.String("backend", appconfig.BackendF5, "speech backend: f5 or gemini")
	pf.Int("workers", 1, "concurrent synthesis requests per chapter")
	pf.String("cache", "", "SQLite synthesis cache file (empty disables caching)")

	for _, key := range persistentKeys {
		_ = a.v.BindPFlag(key, pf.Lookup(key))
	}

	root.AddCommand(
		newNarrateCmd(a),
		newChunkCmd(a),
		newChaptersCmd(a),
		newConfigCmd(a),
		newCacheCmd(a),
	)
	return root
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), errorStyle.Sprint("Error: ")+err.Error())
		os.Exit(1)
	}
}

// loadConfig merges defaults, config file, environment and flags (flags win),
// validates the result and initialises logging.
func (a *app) loadConfig(cmd *cobra.Command) error {
	appconfig.SetDefaults(a.v)
	a.v.SetEnvPrefix(appconfig.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindEnv("f5.apiKey")
	_ = a.v.BindEnv("gemini.apiKey")

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName(appconfig.DefaultConfigName)
		a.v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(dir, "bookpurr"))
		}
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg, err := appconfig.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, closeLog, err := logging.Init(logging.Options{
		Level:    logging.LevelFor(cfg.Debug),
		FilePath: cfg.LogFile,
		JSON:     cfg.LogJSON,
		Stderr:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialise logging: %w", err)
	}
	a.logger = logger
	a.closeLog = closeLog

	a.logger.Debug("Configuration loaded", "file", a.v.ConfigFileUsed(), "backend", cfg.BackendOrDefault())
	return nil
}

func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	err := a.closeLog()
	a.closeLog = nil
	return err
}
