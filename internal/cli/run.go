package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docstitch/config"
	"docstitch/internal/adapter/cache"
	"docstitch/internal/adapter/fs"
	"docstitch/internal/adapter/llm"
	"docstitch/internal/port"
	"docstitch/internal/usecase"
)

var (
	runModel   string
	runBaseURL string
	runAPIKey  string
	runDocsDir string
	runWorkers int
)

var runCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Insert missing docstrings under the given directory",
	Long: `Recursively find Python files under the given directory, generate
docstrings for every undocumented class, function and method, and rewrite the
files in place. Failures are per file or per unit: a file that cannot be
processed is logged and skipped, never aborting the run.

Examples:
  docstitch run .                        # Annotate the current directory
  docstitch run src --api-key sk-...     # Pass the backend credential directly
  docstitch run src --docs-dir build     # Also render Markdown pages`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runModel, "model", "", "backend model name (overrides config)")
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "base URL of the OpenAI-compatible endpoint (overrides config)")
	runCmd.Flags().StringVar(&runAPIKey, "api-key", "", "API key (otherwise read from the configured environment variable)")
	runCmd.Flags().StringVar(&runDocsDir, "docs-dir", "", "also render Markdown documentation into this directory")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "number of concurrent file workers (overrides config)")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	// The only fatal condition: the start directory must exist.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()
	if runModel != "" {
		cfg.Backend.Model = runModel
	}
	if runBaseURL != "" {
		cfg.Backend.BaseURL = runBaseURL
	}
	if runWorkers > 0 {
		cfg.Annotate.Workers = runWorkers
	}

	apiKey := llm.ResolveAPIKey(runAPIKey, cfg.Backend.APIKeyEnv)
	gen := llm.NewOpenAIGenerator(
		apiKey,
		cfg.Backend.Model,
		cfg.Backend.BaseURL,
		time.Duration(cfg.Backend.TimeoutSeconds)*time.Second,
		cfg.Backend.Temperature,
	)

	var genCache port.GenCache
	if cfg.Annotate.CacheEnabled {
		cachePath := cfg.Annotate.CachePath
		if cachePath == "" {
			if err := config.EnsureWorkDir(path); err != nil {
				return fmt.Errorf("failed to create .docstitch directory: %w", err)
			}
			cachePath = config.CacheDBPath(path)
		}
		c, err := cache.NewBoltCache(cachePath)
		if err != nil {
			slog.Warn("generation cache unavailable, continuing without it", "error", err)
		} else {
			genCache = c
			defer c.Close()
		}
	}

	walker := fs.NewWalker(cfg.Walk.Includes, cfg.Walk.Excludes)
	annotateUC := usecase.NewAnnotateUseCase(gen, genCache)
	batchUC := usecase.NewBatchUseCase(walker, annotateUC, cfg.Annotate.Workers)

	fmt.Printf("Scanning %s...\n", path)

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var initialized bool

	progressCallback := func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if !initialized {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Annotating[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
			initialized = true
		}

		bar.Set(processed)
	}

	result, err := batchUC.Run(cmd.Context(), path, progressCallback)
	if err != nil {
		return fmt.Errorf("annotation failed: %w", err)
	}

	fmt.Printf("\nAnnotation complete:\n")
	fmt.Printf("  Files processed:  %d\n", len(result.Reports))
	fmt.Printf("  Files rewritten:  %d\n", result.FilesWritten)
	fmt.Printf("  Docstrings added: %d\n", result.UnitsDocumented)

	if failures := result.Failures(); len(failures) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, rep := range failures {
			fmt.Printf("  - %s: %v\n", rep.Path, rep.Err)
		}
	}

	docsDir := runDocsDir
	if docsDir == "" {
		docsDir = cfg.Docs.OutputDir
	}
	if docsDir != "" {
		renderUC := usecase.NewRenderUseCase(walker, cfg.Docs.SkipInit)
		pages, err := renderUC.Render(cmd.Context(), path, docsDir)
		if err != nil {
			slog.Error("documentation rendering failed", "error", err)
		} else {
			fmt.Printf("\nDocumentation: %d pages written to %s\n", pages, docsDir)
		}
	}

	return nil
}
