package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/homesort/internal/config"
	"github.com/roach88/homesort/internal/fsutil"
	"github.com/roach88/homesort/internal/power"
	"github.com/roach88/homesort/internal/prompt"
	"github.com/roach88/homesort/internal/repository"
	"github.com/roach88/homesort/internal/snapshot"
	"github.com/roach88/homesort/internal/workflow"
)

// configError marks failures to load or save the settings file.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

var (
	errPageNotFound   = errors.New("page not found")
	errBackupNotFound = errors.New("no undo backup taken yet")
)

// app is everything one command invocation needs, built from the flags
// and the settings file.
type app struct {
	opts       *RootOptions
	configPath string
	cfg        *config.Config
	fileDB     string // paths.db as read, before --db
	logger     *slog.Logger
	out        *OutputFormatter
	keeper     *power.Keeper
	repo       *repository.Repository
	snapshots  *snapshot.Manager
	prompter   prompt.Prompter
}

func newApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, out.Fail(&configError{err: err})
	}
	fileDB := cfg.Paths.DB
	if opts.DB != "" {
		cfg.Paths.DB = opts.DB
	}
	out.VerboseLog("Using settings %s, database %s", configPath, cfg.Paths.DB)

	interval, err := cfg.TickInterval()
	if err != nil {
		return nil, out.Fail(&configError{err: err})
	}

	signal := opts.Signal
	if signal == nil {
		signal = power.SignalFunc(func() {})
	}
	keeper := power.NewKeeper(signal, interval, logger)

	fs := fsutil.Default()
	prompter := opts.Prompter
	if prompter == nil {
		prompter = prompt.NewTerminal(os.Stdin, cmd.OutOrStdout())
	}

	return &app{
		opts:       opts,
		configPath: configPath,
		cfg:        cfg,
		fileDB:     fileDB,
		logger:     logger,
		out:        out,
		keeper:     keeper,
		repo: repository.New(cfg.Paths,
			repository.WithFS(fs),
			repository.WithPower(keeper),
			repository.WithLogger(logger)),
		snapshots: snapshot.New(cfg.Paths, fs, logger),
		prompter:  prompter,
	}, nil
}

func (a *app) Close() {
	_ = a.keeper.Close()
	if c, ok := a.prompter.(io.Closer); ok {
		_ = c.Close()
	}
}

// saveConfig writes the settings back without the --db override.
func (a *app) saveConfig() error {
	saved := *a.cfg
	saved.Paths.DB = a.fileDB
	if err := saved.Save(a.configPath); err != nil {
		return &configError{err: err}
	}
	return nil
}

func (a *app) workflow() *workflow.Workflow {
	return workflow.New(a.repo, a.snapshots, a.logger)
}

// confirm asks a yes/no question unless --yes was given.
func (a *app) confirm(question string) (bool, error) {
	if a.opts.Yes {
		return true, nil
	}
	answer, err := a.prompter.GetText(question+" [y/N]", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// errCancelled is returned by execute when the user declines.
var errCancelled = errors.New("cancelled")

// execute requests action and confirms it, including the second
// confirmation a stale loadout needs. A failed action is reported through
// the formatter.
func (a *app) execute(ctx context.Context, action workflow.Action) error {
	w := a.workflow()
	if err := w.Request(action); err != nil {
		return a.out.Fail(err)
	}

	for {
		ok, err := a.confirm(w.Pending().Prompt())
		if err != nil {
			return a.out.Fail(err)
		}
		if !ok {
			w.Cancel()
			return errCancelled
		}

		res := w.Confirm(ctx)
		switch res.State {
		case workflow.StateWarning:
			continue
		case workflow.StateError:
			return a.out.Fail(res.Err)
		}
		return nil
	}
}

// cancelled reports a declined confirmation. It is not an error.
func (a *app) cancelled() error {
	return a.out.Render(map[string]bool{"cancelled": true}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "Cancelled, nothing changed.")
		return err
	})
}
