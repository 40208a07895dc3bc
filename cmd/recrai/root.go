package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/recrai/internal/config"
	"github.com/okian/recrai/pkg/logger"
)

const app = "recrai"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	debug      bool
	json       bool
	dataDir    string
	backendURL string
	apiPrefix  string
	matchMode  string
	workers    int

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           app,
		Short:         "recrai ranks candidates against job requirements",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configFile, "config", "", "a YAML config file (default $RECRAI_CONFIG)")
	pf.BoolVarP(&o.debug, "debug", "d", false, "verbose/debug output")
	pf.BoolVarP(&o.json, "json", "j", false, "json format for logging")
	pf.StringVar(&o.dataDir, "data-dir", "", "read jobs and cvs from this directory instead of the backend")
	pf.StringVar(&o.backendURL, "backend", "", "recruiting backend URL")
	pf.StringVar(&o.apiPrefix, "api-prefix", "", "path prefix of the backend API, e.g. /api")
	pf.StringVar(&o.matchMode, "match-mode", "", "requirement matching: substring or token")
	pf.IntVar(&o.workers, "workers", 0, "fit scoring workers")

	root.AddCommand(
		newServeCmd(o),
		newRankCmd(o),
		newSuggestCmd(o),
		newFitCmd(o),
		newVersionCmd(),
	)
	return root
}

// init loads configuration, applies flag overrides and sets up logging.
// Logs go to stderr so command output stays machine readable.
func (o *rootOptions) init(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), config.WithFile(o.configFile))
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}
	if flags.Changed("backend") {
		cfg.BackendURL = o.backendURL
		if !flags.Changed("data-dir") {
			cfg.DataDir = ""
		}
	}
	if flags.Changed("api-prefix") {
		cfg.APIPrefix = o.apiPrefix
	}
	if flags.Changed("match-mode") {
		cfg.MatchMode = o.matchMode
	}
	if flags.Changed("workers") {
		cfg.WorkerCount = o.workers
	}
	if flags.Changed("json") {
		cfg.LogJSON = o.json
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.WithJSON(cfg.LogJSON), logger.WithOutputs("stderr")); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	o.log = logger.Get().Named(cmd.Name())
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		o.log.Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	o.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", app, version)
		},
	}
}
