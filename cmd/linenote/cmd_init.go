package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"linenote/internal/config"
	"linenote/internal/logging"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a .linenote workspace",
	Long: `Creates the .linenote/ directory in the workspace root with a default
config.yaml and an empty annotation store. Safe to run twice: existing
files are left untouched.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := filepath.Join(workspace, config.Dir)
	for _, sub := range []string{dir, filepath.Join(dir, "sessions"), filepath.Join(dir, "logs")} {
		if err := os.MkdirAll(sub, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", sub, err)
		}
	}

	// Logs and edit scratch files are per-machine noise; keep them out of
	// version control even when .linenote/ itself is committed.
	ignorePath := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		if err := os.WriteFile(ignorePath, []byte("logs/\nsessions/\n"), 0644); err != nil {
			return fmt.Errorf("failed to seed ignore file: %w", err)
		}
	}

	cfgPath := config.Path(workspace)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.DefaultConfig().Save(cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created %s\n", cfgPath)
	} else {
		fmt.Printf("  %s already exists, keeping it\n", cfgPath)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	storePath := cfg.StorePath(workspace)
	if _, err := os.Stat(storePath); os.IsNotExist(err) {
		if err := os.WriteFile(storePath, nil, 0644); err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}
		fmt.Printf("✓ Created %s\n", storePath)
	} else {
		fmt.Printf("  %s already exists, keeping it\n", storePath)
	}

	logging.Boot("workspace initialized at %s", workspace)
	fmt.Println("Workspace ready. Try: linenote add <file> <range> <text>")
	return nil
}
