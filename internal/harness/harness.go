package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/homesort/internal/config"
	"github.com/roach88/homesort/internal/fsutil"
	"github.com/roach88/homesort/internal/layout"
	"github.com/roach88/homesort/internal/order"
	"github.com/roach88/homesort/internal/repository"
	"github.com/roach88/homesort/internal/snapshot"
	"github.com/roach88/homesort/internal/testutil"
	"github.com/roach88/homesort/internal/workflow"
)

// Harness is one isolated installation a scenario runs against.
type Harness struct {
	t         testing.TB
	paths     config.Paths
	repo      *repository.Repository
	snapshots *snapshot.Manager
	workflow  *workflow.Workflow
	logger    *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary directory: the seed layout is
// written to app.db next to an iconlayout.ini, and the data directory sits
// beside them.
//
// Execution flow:
// 1. Write the seed database
// 2. Run each step and check its expect clause
// 3. Load the final layout
// 4. Evaluate assertions
func Run(t testing.TB, scenario *Scenario) (*Result, error) {
	t.Helper()
	dir := t.TempDir()

	paths := config.Paths{
		DB:      filepath.Join(dir, "app.db"),
		INI:     filepath.Join(dir, "iconlayout.ini"),
		DataDir: filepath.Join(dir, config.DefaultDataDir),
	}
	testutil.WriteAppDB(t, paths.DB, scenario.Layout.model())
	if err := os.WriteFile(paths.INI, []byte("[layout]\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write layout file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	fs := fsutil.New(fsutil.Options{MaxRetries: 0})
	repo := repository.New(paths,
		repository.WithFS(fs),
		repository.WithLogger(logger),
		repository.WithRunIDs(testutil.NewFixedRunID(scenario.RunID)))
	snapshots := snapshot.New(paths, fs, logger)

	h := &Harness{
		t:         t,
		paths:     paths,
		repo:      repo,
		snapshots: snapshots,
		workflow:  workflow.New(repo, snapshots, logger),
		logger:    logger,
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		rec := h.executeStep(ctx, step)
		result.Steps = append(result.Steps, rec)
		checkExpect(result, i, step, rec)
	}

	final, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load final layout: %w", err)
	}
	result.Final = final

	for _, errMsg := range EvaluateAssertions(ctx, result, scenario.Assertions, snapshots) {
		result.AddError(errMsg)
	}

	return result, nil
}

// model builds the seed model, adding a page row per folder.
func (l Layout) model() *layout.Model {
	m := &layout.Model{
		Pages: append([]layout.Page(nil), l.Pages...),
		Icons: l.Icons,
	}
	for i, id := range l.Folders {
		m.Pages = append(m.Pages, layout.Page{PageID: id, PageNo: -(i + 1)})
	}
	return m
}

// executeStep runs one step and records its outcome. Failures become
// records, not errors, so later steps and assertions still run.
func (h *Harness) executeStep(ctx context.Context, step Step) StepRecord {
	rec := StepRecord{Action: step.Action}

	res := h.apply(ctx, step)
	rec.State = res.State.String()
	if res.Err != nil {
		rec.Code = errorCode(res.Err)
		rec.Error = res.Err.Error()
	}

	h.logger.Info("step completed", "action", step.Action, "state", rec.State, "code", rec.Code)
	return rec
}

func (h *Harness) apply(ctx context.Context, step Step) workflow.Result {
	switch step.Action {
	case ActionSort:
		m, err := h.repo.Load(ctx)
		if err != nil {
			return failed(err)
		}
		opts, err := sortOptions(step.Sort)
		if err != nil {
			return failed(err)
		}
		if err := order.Sort(m, opts); err != nil {
			return failed(err)
		}
		return h.workflow.Apply(ctx, workflow.ApplySort{Icons: m.Icons})

	case ActionSwapPages:
		m, err := h.repo.Load(ctx)
		if err != nil {
			return failed(err)
		}
		i, j := pageIndex(m.Pages, step.Pages[0]), pageIndex(m.Pages, step.Pages[1])
		if err := order.SwapPages(m.Pages, i, j); err != nil {
			return failed(err)
		}
		return h.workflow.Apply(ctx, workflow.ApplyPages{Pages: m.Pages})

	case ActionSaveLoadout:
		if _, err := h.snapshots.Backup(ctx, step.Name); err != nil {
			return failed(err)
		}
		return workflow.Result{State: workflow.StateDone}

	case ActionRestoreLoadout:
		return h.workflow.Apply(ctx, workflow.RestoreLoadout{Name: step.Name, Force: step.Force})

	case ActionDeleteLoadout:
		return h.workflow.Apply(ctx, workflow.DeleteLoadout{Name: step.Name})

	case ActionBackup:
		if _, err := h.snapshots.WholeDbBackup(ctx); err != nil {
			return failed(err)
		}
		return workflow.Result{State: workflow.StateDone}

	case ActionRestoreBackup:
		return h.workflow.Apply(ctx, workflow.RestoreBackup{})

	case ActionInstall:
		testutil.InsertIcon(h.t, h.paths.DB, *step.Icon)
		return workflow.Result{State: workflow.StateDone}
	}
	return failed(fmt.Errorf("unknown action %q", step.Action))
}

func failed(err error) workflow.Result {
	return workflow.Result{State: workflow.StateError, Err: err}
}

func sortOptions(s *SortStep) (order.Options, error) {
	cfg := config.Default()
	if s != nil {
		for _, kv := range [][2]string{{"sort.by", s.By}, {"sort.mode", s.Mode}, {"sort.folders", s.Folders}} {
			if kv[1] == "" {
				continue
			}
			if err := cfg.Set(kv[0], kv[1]); err != nil {
				return order.Options{}, err
			}
		}
	}
	return cfg.OrderOptions()
}

// pageIndex returns the index of the page shown as pageNo, or -1.
func pageIndex(pages []layout.Page, pageNo int) int {
	for i, p := range pages {
		if p.PageNo == pageNo {
			return i
		}
	}
	return -1
}

// errorCode extracts the domain error code from err.
func errorCode(err error) string {
	var re *repository.Error
	if errors.As(err, &re) {
		return string(re.Code)
	}
	var se *snapshot.Error
	if errors.As(err, &se) {
		return string(se.Code)
	}
	var oe *order.Error
	if errors.As(err, &oe) {
		return string(oe.Code)
	}
	return "UNKNOWN"
}

// checkExpect compares a step record with the step's expect clause. A step
// without one must not fail.
func checkExpect(result *Result, index int, step Step, rec StepRecord) {
	want := ExpectClause{State: "done"}
	if step.Expect != nil {
		want = *step.Expect
	}

	if rec.State != want.State {
		msg := fmt.Sprintf("steps[%d] %s: expected state %s, got %s", index, step.Action, want.State, rec.State)
		if rec.Error != "" {
			msg += ": " + rec.Error
		}
		result.AddError(msg)
		return
	}
	if want.Code != "" && rec.Code != want.Code {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected code %s, got %s", index, step.Action, want.Code, rec.Code))
	}
}
