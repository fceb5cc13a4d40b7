// Package workflow is the confirmation state machine in front of every
// destructive operation.
//
// A caller requests an Action, which moves the machine from None to
// Confirm. Confirming runs the action through Apply. Restoring a loadout
// that is missing newly installed apps stops in Warning and needs a second
// confirmation. Every run ends in Done or Error, and Reset returns to None.
package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/homesort/internal/layout"
)

// State is a step of the confirmation flow.
type State int

const (
	StateNone State = iota
	StateConfirm
	StateWarning
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateConfirm:
		return "confirm"
	case StateWarning:
		return "warning"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Layout is the write side of the layout repository.
type Layout interface {
	Persist(ctx context.Context, icons []layout.Icon) error
	PersistPages(ctx context.Context, pages []layout.Page) error
	Compare(ctx context.Context, snapshotDB string) (bool, error)
}

// Snapshots is the part of the snapshot manager the workflow drives.
type Snapshots interface {
	WholeDbBackup(ctx context.Context) (string, error)
	WholeDbRestore(ctx context.Context) (string, error)
	Restore(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
	Path(name string) (string, error)
}

// Result is the outcome of one Apply.
type Result struct {
	State State
	Err   error
}

// Workflow holds at most one pending action.
type Workflow struct {
	layout    Layout
	snapshots Snapshots
	logger    *slog.Logger

	state   State
	pending Action
	err     error
}

// New creates a workflow in StateNone.
func New(l Layout, s Snapshots, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{layout: l, snapshots: s, logger: logger}
}

// State returns the current state.
func (w *Workflow) State() State { return w.state }

// Pending returns the action awaiting confirmation, or nil.
func (w *Workflow) Pending() Action { return w.pending }

// Err returns the failure that moved the workflow to StateError.
func (w *Workflow) Err() error { return w.err }

// Request queues a for confirmation. Only valid in StateNone.
func (w *Workflow) Request(a Action) error {
	if w.state != StateNone {
		return fmt.Errorf("cannot request %T in state %s", a, w.state)
	}
	w.pending = a
	w.state = StateConfirm
	return nil
}

// Confirm runs the pending action. From StateConfirm a stale loadout moves
// to StateWarning with a forced restore pending; confirming again runs it.
func (w *Workflow) Confirm(ctx context.Context) Result {
	if w.state != StateConfirm && w.state != StateWarning {
		return Result{State: w.state, Err: fmt.Errorf("nothing to confirm in state %s", w.state)}
	}

	res := w.Apply(ctx, w.pending)
	w.state = res.State
	w.err = res.Err

	switch res.State {
	case StateWarning:
		if a, ok := w.pending.(RestoreLoadout); ok {
			a.Force = true
			w.pending = a
		}
	default:
		w.pending = nil
	}
	return res
}

// Cancel drops the pending action.
func (w *Workflow) Cancel() {
	w.pending = nil
	w.state = StateNone
}

// Reset returns to StateNone after Done or Error.
func (w *Workflow) Reset() {
	w.pending = nil
	w.err = nil
	w.state = StateNone
}

// Apply performs a without any confirmation bookkeeping.
//
// Layout writes take the undo backup first and stop if it fails. A loadout
// restore checks staleness unless forced.
func (w *Workflow) Apply(ctx context.Context, a Action) Result {
	switch a := a.(type) {
	case ApplySort:
		return w.write(ctx, "sort", func() error { return w.layout.Persist(ctx, a.Icons) })

	case ApplyPages:
		return w.write(ctx, "pages", func() error { return w.layout.PersistPages(ctx, a.Pages) })

	case RestoreBackup:
		from, err := w.snapshots.WholeDbRestore(ctx)
		if err != nil {
			return w.fail("restore backup", err)
		}
		w.logger.Info("backup restored", "from", from)
		return Result{State: StateDone}

	case RestoreLoadout:
		if !a.Force {
			path, err := w.snapshots.Path(a.Name)
			if err != nil {
				return w.fail("restore loadout", err)
			}
			stale, err := w.layout.Compare(ctx, path)
			if err != nil {
				return w.fail("compare loadout", err)
			}
			if stale {
				w.logger.Warn("loadout is missing installed apps", "name", a.Name)
				return Result{State: StateWarning}
			}
		}
		if err := w.snapshots.Restore(ctx, a.Name); err != nil {
			return w.fail("restore loadout", err)
		}
		return Result{State: StateDone}

	case DeleteLoadout:
		if err := w.snapshots.Delete(ctx, a.Name); err != nil {
			return w.fail("delete loadout", err)
		}
		return Result{State: StateDone}

	case nil:
		return Result{State: StateError, Err: fmt.Errorf("no action")}
	}
	return Result{State: StateError, Err: fmt.Errorf("unknown action %T", a)}
}

func (w *Workflow) write(ctx context.Context, what string, persist func() error) Result {
	backup, err := w.snapshots.WholeDbBackup(ctx)
	if err != nil {
		return w.fail("back up before "+what, err)
	}
	w.logger.Debug("undo backup taken", "path", backup)

	if err := persist(); err != nil {
		return w.fail("write "+what, err)
	}
	return Result{State: StateDone}
}

func (w *Workflow) fail(op string, err error) Result {
	w.logger.Error(op+" failed", "error", err)
	return Result{State: StateError, Err: fmt.Errorf("%s: %w", op, err)}
}
