package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"linenote/internal/config"
	"linenote/internal/excerpt"
	"linenote/internal/logging"
	"linenote/internal/syncer"
)

var editKeep bool

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit all annotation bodies in your editor and sync back",
	Long: `Renders the annotation document to a scratch file under
.linenote/sessions/, opens it in $EDITOR, and syncs the result back to the
store when the editor exits. The scratch file is removed afterwards unless
--keep is given.`,
	RunE: runEdit,
}

func init() {
	editCmd.Flags().BoolVar(&editKeep, "keep", false, "keep the scratch document after syncing")
}

func runEdit(cmd *cobra.Command, args []string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set")
	}

	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	s := syncer.New(st, excerpt.FileSource{Root: workspace}, renderOptions(cfg))

	doc, decodeErrs, err := s.RenderDocument(context.Background())
	if err != nil {
		return err
	}
	warnDecodeErrors(decodeErrs)

	sessionsDir := filepath.Join(workspace, config.Dir, "sessions")
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions dir: %w", err)
	}
	docPath := filepath.Join(sessionsDir, "edit-"+uuid.NewString()+".md")

	registry := sessionRegistry()
	sess, err := registry.Open(docPath, st.Path())
	if err != nil {
		return err
	}
	defer registry.Close(sess.DocPath) //nolint:errcheck

	if err := os.WriteFile(docPath, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write scratch document: %w", err)
	}
	if !editKeep {
		defer os.Remove(docPath)
	}
	logging.Session("edit session %s opened for %s", sess.ID, docPath)

	ed := exec.Command(editor, docPath)
	ed.Stdin = os.Stdin
	ed.Stdout = os.Stdout
	ed.Stderr = os.Stderr
	if err := ed.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	edited, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("failed to read edited document: %w", err)
	}
	if string(edited) == doc {
		fmt.Println("No edits made.")
		return nil
	}

	outcome, err := s.SyncDocument(context.Background(), string(edited))
	if err != nil {
		return err
	}
	reportOutcome(outcome)
	if editKeep {
		fmt.Println(dimStyle.Render("Scratch document kept at " + docPath))
	}
	return nil
}
