// Package main implements the linenote CLI: side-car annotations for line
// ranges of project files, stored under .linenote/ and bulk-edited through
// a rendered markdown document.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"linenote/internal/codec"
	"linenote/internal/config"
	"linenote/internal/document"
	"linenote/internal/logging"
	"linenote/internal/session"
	"linenote/internal/store"
)

var (
	// Global flags
	verbose   bool
	workspace string

	// Logger
	logger *zap.Logger

	// One registry per process; edit and watch sessions share it.
	registry = session.NewRegistry()
)

func sessionRegistry() *session.Registry {
	return registry
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "linenote",
	Short: "linenote - side-car annotations for source files",
	Long: `linenote attaches free-text notes to line ranges of project files
without modifying the files themselves.

Annotations live in a one-record-per-line store under .linenote/ and can be
bulk-edited through a rendered markdown document: edit the bodies, keep the
headings, and sync the document back.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace = findWorkspace()
		}

		cfg, err := config.Load(config.Path(workspace))
		if err != nil {
			return err
		}
		if err := logging.Initialize(workspace, logging.Options{
			DebugMode:  cfg.Logging.DebugMode,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			logger.Warn("category logging unavailable", zap.Error(err))
		}
		if logging.IsDebugMode() {
			logger.Debug("category logs enabled",
				zap.String("dir", filepath.Join(workspace, config.Dir, "logs")))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// findWorkspace walks upward from the working directory looking for an
// existing .linenote side-car; falls back to the working directory itself.
func findWorkspace() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		if info, err := os.Stat(filepath.Join(dir, config.Dir)); err == nil && info.IsDir() {
			return dir
		}
		if dir == filepath.Dir(dir) {
			return cwd
		}
	}
}

// loadConfig loads the workspace config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Path(workspace))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore binds the canonical store per the workspace config.
func openStore() (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	c := codec.Codec{TrackColumns: cfg.Store.TrackColumns}
	return store.New(cfg.StorePath(workspace), c), cfg, nil
}

// renderOptions maps config to document render options.
func renderOptions(cfg *config.Config) document.RenderOptions {
	return document.RenderOptions{
		Preamble:        cfg.Render.Preamble,
		IncludeExcerpts: cfg.Render.IncludeExcerpts,
		GeneralSection:  cfg.Render.GeneralSection,
	}
}

// warnDecodeErrors aggregates decode errors into one multi-line warning.
func warnDecodeErrors(errs []codec.DecodeError) {
	if len(errs) == 0 {
		return
	}
	msg := fmt.Sprintf("%d store line(s) could not be decoded:\n", len(errs))
	for _, e := range errs {
		msg += fmt.Sprintf("  line %d: %s\n", e.Line, e.Reason)
	}
	fmt.Fprint(os.Stderr, "Warning: "+msg)
}

// warnExtractErrors aggregates extract errors into one multi-line warning.
func warnExtractErrors(errs []document.ExtractError) {
	if len(errs) == 0 {
		return
	}
	msg := fmt.Sprintf("%d document section(s) could not be extracted:\n", len(errs))
	for _, e := range errs {
		msg += fmt.Sprintf("  line %d: %s\n", e.Line, e.Reason)
	}
	fmt.Fprint(os.Stderr, "Warning: "+msg)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace root (default: nearest .linenote)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
