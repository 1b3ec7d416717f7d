package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tgienger/projman/internal/config"
	"github.com/tgienger/projman/internal/db"
	"github.com/tgienger/projman/internal/logging"
	"github.com/tgienger/projman/internal/session"
)

// Options holds the global flags
type Options struct {
	ConfigFile string
	DataPath   string
	Verbose    bool
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the terminal UI.
func NewRootCommand(version string) *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "projman",
		Short: "projman - projects and their tasks in your terminal",
		Long: `projman tracks projects and the tasks inside them.

Without a subcommand it opens the interactive project browser. The collection
is loaded from the data file at start and written back on exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, opts)
		},
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/projman/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.DataPath, "data", "d", "", "projects file; .yaml/.yml selects YAML, anything else SQLite")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newFindCmd(opts))
	rootCmd.AddCommand(newAddCmd(opts))
	rootCmd.AddCommand(newRemoveCmd(opts))
	rootCmd.AddCommand(newTasksCmd(opts))
	rootCmd.AddCommand(newTaskCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	rootCmd.AddCommand(newVersionCmd(version))

	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// env is what every command needs: the loaded session and a logger
type env struct {
	session *session.Session
	log     *zap.Logger
}

func (e *env) close() {
	_ = e.log.Sync()
}

// openEnv resolves config, builds the logger and loads the collection
func openEnv(opts *Options) (*env, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.DataPath != "" {
		cfg.Data.Path = opts.DataPath
	}
	if cfg.Data.Path == "" {
		return nil, fmt.Errorf("no data path configured")
	}

	log, err := logging.New(cfg.Log, opts.Verbose)
	if err != nil {
		return nil, err
	}

	s, err := session.Open(db.Open(cfg.Data.Path), log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &env{session: s, log: log}, nil
}

// mutate loads the collection, applies fn and saves when fn succeeds
func mutate(opts *Options, fn func(s *session.Session) error) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.close()

	if err := fn(e.session); err != nil {
		return err
	}
	return e.session.Save()
}

// inspect loads the collection and applies fn without saving
func inspect(opts *Options, fn func(s *session.Session) error) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.close()

	return fn(e.session)
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "projman %s\n", version)
		},
	}
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
