package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/homesort/internal/workflow"
)

// NewBackupCommand creates the backup command.
func NewBackupCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Take an undo backup of the layout database",
		Long: `Copy the live layout database to the backup directory. The first
backup ever taken is kept as a pristine copy; later backups replace the
latest copy. Every sort takes one of these automatically.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := a.snapshots.WholeDbBackup(cmd.Context())
			if err != nil {
				return a.out.Fail(err)
			}
			return a.out.Render(map[string]string{"path": path}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Backup saved to %s.\n", path)
				return err
			})
		},
	}
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Put the undo backup back in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			from := a.snapshots.BackupPath()
			if from == "" {
				return a.out.Fail(fmt.Errorf("no backup in %s: %w", a.snapshots.BackupDir, errBackupNotFound))
			}

			if err := a.execute(cmd.Context(), workflow.RestoreBackup{}); err != nil {
				if errors.Is(err, errCancelled) {
					return a.cancelled()
				}
				return err
			}
			return a.out.Render(map[string]string{"from": from}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Restored backup %s.\n", from)
				return err
			})
		},
	}
}
