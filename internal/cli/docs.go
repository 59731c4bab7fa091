package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docstitch/internal/adapter/fs"
	"docstitch/internal/usecase"
)

var docsOut string

var docsCmd = &cobra.Command{
	Use:   "docs [path]",
	Short: "Render Markdown documentation without modifying any source file",
	Long: `Render one Markdown page per Python file from its modules, classes,
functions and methods. Source files are never modified.

Examples:
  docstitch docs .                # Render docs for the current directory
  docstitch docs src --out pages  # Choose the output directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.Flags().StringVar(&docsOut, "out", "docs", "output directory for the rendered pages")
}

func runDocs(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()
	walker := fs.NewWalker(cfg.Walk.Includes, cfg.Walk.Excludes)
	renderUC := usecase.NewRenderUseCase(walker, cfg.Docs.SkipInit)

	pages, err := renderUC.Render(cmd.Context(), path, docsOut)
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}

	fmt.Printf("Documentation: %d pages written to %s\n", pages, docsOut)
	return nil
}
