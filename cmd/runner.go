package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskx/internal/events"
	"github.com/desertthunder/taskx/internal/formatter"
	"github.com/desertthunder/taskx/internal/progress"
	"github.com/desertthunder/taskx/internal/repositories"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/tasks"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	files      *formatter.Writer
	clock      func() time.Time

	db      *sql.DB
	engine  *progress.Engine
	tracker *tasks.Tracker
	bus     *events.Bus
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Fs         afero.Fs
	Clock      func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		files:      formatter.NewWriter(opts.Fs),
		clock:      opts.Clock,
		bus:        events.NewBus(0),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, taskCommand, statsCommand, achievementsCommand, analyticsCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Configure resolves the config file and .env overrides named by the root flags.
//
// It runs as the root command's Before hook.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	config, err := shared.ResolveConfig(r.configPath, cmd.String("env"))
	if err != nil {
		return ctx, err
	}
	r.config = config

	level := shared.ParseLogLevel(config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

// SetLogger replaces the logger used by the runner and anything it opens afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// open lazily connects to the database, applies pending migrations and builds the tracker.
func (r *Runner) open() (*tasks.Tracker, error) {
	if r.tracker != nil {
		return r.tracker, nil
	}

	loc, err := r.config.Tracker.Location()
	if err != nil {
		return nil, err
	}

	catalog := progress.DefaultCatalog()
	if path := r.config.Tracker.CatalogPath; path != "" {
		if catalog, err = progress.LoadCatalog(path); err != nil {
			return nil, err
		}
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	applied, err := shared.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if applied > 0 {
		r.logger.Debug("applied migrations", "count", applied)
	}

	r.engine = progress.NewEngine(progress.EngineOpts{
		Store:   repositories.NewBlobRepository(db),
		Catalog: catalog,
		Clock:   r.clock,
		Logger:  shared.WithLogger(r.logger, "component", "progress"),
	})

	tracker, err := tasks.NewTracker(tasks.TrackerOpts{
		Store:    repositories.NewTaskRepository(db),
		Progress: r.engine,
		Bus:      r.bus,
		Clock:    r.clock,
		Location: loc,
		Logger:   shared.WithLogger(r.logger, "component", "tracker"),
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	r.db = db
	r.tracker = tracker
	return tracker, nil
}

// Close releases the database connection and the event bus.
func (r *Runner) Close() error {
	r.bus.Close()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.tracker, r.engine = nil, nil, nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
