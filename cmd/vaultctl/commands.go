package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mindvault/internal/archive"
	"mindvault/internal/storage"
)

// Opener returns the item store the commands operate on.
type Opener func(ctx context.Context) (*storage.Store, error)

// NewRootCmd creates the vaultctl command tree.
func NewRootCmd(open Opener, now func() time.Time) *cobra.Command {
	root := &cobra.Command{
		Use:          "vaultctl",
		Short:        "Inspect and export MindVault storage",
		SilenceUsage: true,
	}
	root.AddCommand(
		NewUsersCmd(open),
		NewExportCmd(open, now),
		NewStatusCmd(open),
	)
	return root
}

// NewUsersCmd creates the users command.
func NewUsersCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users with saved items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			users, err := store.ListUsers(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "no users")
				return nil
			}
			for _, uid := range users {
				items, err := store.List(ctx, uid)
				if err != nil {
					return fmt.Errorf("list items of %s: %w", uid, err)
				}
				fmt.Fprintf(out, "%s\t%d items\n", uid, len(items))
			}
			return nil
		},
	}
}

// NewExportCmd creates the export command.
func NewExportCmd(open Opener, now func() time.Time) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <user_id>",
		Short: "Write a user's archive to a zip file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			a, err := archive.NewBuilder(store, now).Build(ctx, args[0])
			if errors.Is(err, archive.ErrNoItems) {
				return fmt.Errorf("user %s has no items", args[0])
			}
			if err != nil {
				return err
			}
			data, err := a.Zip()
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("output")
			if path == "" {
				path = a.Name(archive.LabelExport)
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("write archive: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d items, %d tags)\n", path, a.ItemCount, len(a.TagDirs))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (default mindvault-export-<user>-<time>.zip)")
	return cmd
}

// NewStatusCmd creates the status command.
func NewStatusCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "status <user_id>",
		Short: "Show item count and backup settings for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			uid := args[0]
			items, err := store.List(ctx, uid)
			if err != nil {
				return err
			}
			st, err := store.GetSettings(ctx, uid)
			if err != nil {
				return err
			}

			last := "never"
			if st.LastBackup != nil {
				last = st.LastBackup.UTC().Format(time.RFC3339)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:          %s\n", uid)
			fmt.Fprintf(out, "items:         %d\n", len(items))
			fmt.Fprintf(out, "daily backups: %t\n", st.DailyBackupEnabled)
			fmt.Fprintf(out, "last backup:   %s\n", last)
			return nil
		},
	}
}
