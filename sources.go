package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bwan3150/resourcer/internal/catalog"
	"github.com/bwan3150/resourcer/internal/config"
)

func newSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage registered source folders",
	}

	cmd.AddCommand(newSourcesListCmd())
	cmd.AddCommand(newSourcesAddCmd())
	cmd.AddCommand(newSourcesRemoveCmd())
	cmd.AddCommand(newSourcesSelectCmd())

	return cmd
}

// openStore opens the catalog at the resolved data directory. Source
// management reads and writes the database directly — it does not require a
// serve process to be running.
func openStore(cc *CLIContext) (*catalog.Store, error) {
	dbPath := config.DefaultDatabasePath(cc.Cfg.Server.DataDir)

	store, err := catalog.Open(context.Background(), dbPath, cc.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	return store, nil
}

func newSourcesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered source folders",
		RunE:  runSourcesList,
	}
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	store, err := openStore(cc)
	if err != nil {
		return err
	}
	defer store.Close()

	folders, err := store.ListSourceFolders(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing source folders: %w", err)
	}

	if cc.Flags.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(folders)
	}

	rows := make([][]string, len(folders))
	for i, f := range folders {
		selected := ""
		if f.IsSelected {
			selected = "*"
		}

		rows[i] = []string{selected, f.Path, formatTime(f.CreatedAt)}
	}

	printTable(os.Stdout, []string{"", "PATH", "ADDED"}, rows)

	return nil
}

func newSourcesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Register a new source folder",
		Args:  cobra.ExactArgs(1),
		RunE:  runSourcesAdd,
	}
}

func runSourcesAdd(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	store, err := openStore(cc)
	if err != nil {
		return err
	}
	defer store.Close()

	sf, err := store.AddSourceFolder(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("adding source folder: %w", err)
	}

	statusf(cc.Flags.Quiet, "Added source folder %s\n", sf.Path)

	return nil
}

func newSourcesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>",
		Short: "Unregister a source folder",
		Args:  cobra.ExactArgs(1),
		RunE:  runSourcesRemove,
	}
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	store, err := openStore(cc)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RemoveSourceFolder(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("removing source folder: %w", err)
	}

	statusf(cc.Flags.Quiet, "Removed source folder %s\n", args[0])

	return nil
}

func newSourcesSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <path>",
		Short: "Mark a source folder as selected",
		Args:  cobra.ExactArgs(1),
		RunE:  runSourcesSelect,
	}
}

func runSourcesSelect(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	store, err := openStore(cc)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SwitchSourceFolder(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("selecting source folder: %w", err)
	}

	statusf(cc.Flags.Quiet, "Selected source folder %s\n", args[0])

	return nil
}
