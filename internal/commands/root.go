package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"streaming-db/internal/catalog"
	"streaming-db/internal/config"
	"streaming-db/internal/database"
	"streaming-db/internal/loader"
	"streaming-db/internal/logger"
	"streaming-db/internal/result"
	"streaming-db/internal/runner"
)

// errReported marks a failure whose "Fail" line is already on stdout.
var errReported = errors.New("failure reported")

type options struct {
	configPath string
	driver     string
	dsn        string
	logLevel   string
	timeout    time.Duration
}

// app is the state shared by the subcommands of one invocation.
type app struct {
	opts   options
	cfg    *config.Config
	logger *zap.Logger
}

// Execute runs the CLI with args and returns the process exit code. Any
// failure prints exactly "Fail" on stdout.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(stdout, "Fail")
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "streaming-db",
		Short: "Load and query the streaming catalog database",
		Long: `streaming-db recreates the streaming catalog schema from CSV files and runs
one query or mutation per invocation.

Mutations print Success or Fail. Queries print one comma-separated line per
row, or Fail when nothing matches.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("no operation given")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", config.DefaultPath, "path to the YAML config file")
	flags.StringVar(&a.opts.driver, "driver", "", "database driver: mysql, postgres or sqlite")
	flags.StringVar(&a.opts.dsn, "dsn", "", "database data source name")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.DurationVar(&a.opts.timeout, "timeout", 0, "bound the whole invocation (0 means no limit)")

	root.AddCommand(
		newImportCommand(a),
		newInsertViewerCommand(a),
		newAddGenreCommand(a),
		newDeleteViewerCommand(a),
		newInsertMovieCommand(a),
		newInsertSessionCommand(a),
		newUpdateReleaseCommand(a),
		newListReleasesCommand(a),
		newPopularReleaseCommand(a),
		newReleaseTitleCommand(a),
		newActiveViewerCommand(a),
		newVideosViewedCommand(a),
	)

	return root
}

// setup loads configuration and builds the logger. Precedence is flags,
// then environment, then the config file, then defaults.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.opts.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	if a.opts.driver != "" {
		cfg.Database.Driver = a.opts.driver
	}
	if a.opts.dsn != "" {
		cfg.Database.DSN = a.opts.dsn
	}
	if a.opts.logLevel != "" {
		cfg.Log.Level = a.opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger.WithInvocation(log, uuid.NewString(), cmd.Name(), cfg.Database.Driver)
	return nil
}

// deps are the components an operation is bound to once the store is open.
type deps struct {
	catalog *catalog.Catalog
	loader  *loader.Loader
}

// run opens the store, executes the bound operation, and renders its result.
func (a *app) run(cmd *cobra.Command, bind func(deps) runner.Operation) error {
	defer a.logger.Sync()

	ctx := cmd.Context()
	if a.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.timeout)
		defer cancel()
	}

	store, err := database.Open(ctx, a.cfg.Database, a.logger)
	if err != nil {
		a.logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer store.Close()

	op := bind(deps{
		catalog: catalog.New(store, a.cfg.Policies, a.logger),
		loader:  loader.New(store, a.cfg.Import, a.logger),
	})
	res := runner.New(a.logger).Run(ctx, op)

	if err := res.Render(cmd.OutOrStdout(), a.cfg.Policies.EmptyResult); err != nil {
		a.logger.Error("Failed to write result", zap.Error(err))
		return errReported
	}

	failed := res.Kind == result.KindFailure ||
		(res.Kind == result.KindEmpty && a.cfg.Policies.EmptyResult == config.EmptyFail)
	if failed {
		return errReported
	}
	return nil
}
