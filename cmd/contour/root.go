package main

import (
	"fmt"
	"log/slog"

	"github.com/chazu/contour/pkg/config"
	"github.com/spf13/cobra"
)

// rootState is filled in by the persistent flags and the pre-run hook and
// shared by every subcommand.
type rootState struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	st := &rootState{}
	cmd := &cobra.Command{
		Use:   "contour",
		Short: "Contour - declarative solid modeling",
		Long: `Contour evaluates modeling scripts built from nested line, sketch and
part contexts and reports, meshes or exports the shapes they show.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.setup(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&st.configPath, "config", "", "path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the configuration")

	cmd.AddCommand(newEvalCmd(st), newWatchCmd(st))
	return cmd
}

// setup loads the configuration and builds the logger. Logs go to the
// command's error stream so JSON output stays clean.
func (st *rootState) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if st.configPath != "" {
		loaded, err := config.Load(st.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if st.logLevel != "" {
		if _, err := config.ParseLevel(st.logLevel); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
		cfg.Log.Level = st.logLevel
	}
	logger, err := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	st.cfg, st.log = cfg, logger
	return nil
}
