package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"docstitch/internal/adapter/fs"
	"docstitch/internal/domain"
	"docstitch/internal/port"
)

// ProgressFunc reports batch progress after each completed file.
type ProgressFunc func(processed, total int, currentFile string)

// BatchUseCase fans the discovered files out over a bounded worker pool.
// Files are independent: no state is shared between them except the
// read-only generator behind the annotator, so backend latency overlaps
// instead of serializing the run.
type BatchUseCase struct {
	walker    port.FileWalker
	annotator port.Annotator
	workers   int
}

func NewBatchUseCase(walker port.FileWalker, annotator port.Annotator, workers int) *BatchUseCase {
	if workers <= 0 {
		workers = 4
	}
	return &BatchUseCase{
		walker:    walker,
		annotator: annotator,
		workers:   workers,
	}
}

// BatchResult aggregates the per-file reports of one run.
type BatchResult struct {
	Reports         []domain.FileReport
	FilesWritten    int
	UnitsDocumented int
}

// Failures returns the reports that carry an error.
func (r *BatchResult) Failures() []domain.FileReport {
	var failed []domain.FileReport
	for _, rep := range r.Reports {
		if rep.Err != nil {
			failed = append(failed, rep)
		}
	}
	return failed
}

// Run processes every file under root. Per-file failures are recorded in the
// reports and never abort the batch; the returned error is reserved for the
// walk itself failing. Cancelling the context stops new files from being
// picked up, while files already past validation still finish their write.
func (u *BatchUseCase) Run(ctx context.Context, root string, progress ProgressFunc) (*BatchResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	jobs := make(chan port.FileInfo)
	reports := make(chan domain.FileReport)

	var wg sync.WaitGroup
	for i := 0; i < u.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				reports <- u.processFile(ctx, file.Path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(reports)
	}()

	result := &BatchResult{}
	processed := 0
	for rep := range reports {
		processed++
		if progress != nil {
			progress(processed, len(files), rep.Path)
		}
		if rep.Written {
			result.FilesWritten++
		}
		result.UnitsDocumented += rep.Stats.UnitsDocumented
		result.Reports = append(result.Reports, rep)
	}

	return result, nil
}

// processFile runs read -> annotate -> write for one file. The write only
// begins once the full validated text is in memory, so an interrupted batch
// never leaves a file half-written.
func (u *BatchUseCase) processFile(ctx context.Context, path string) domain.FileReport {
	rep := domain.FileReport{Path: path}

	if err := ctx.Err(); err != nil {
		rep.Err = err
		return rep
	}

	slog.Info("processing file", "file", path)

	src, enc, err := fs.ReadSource(path)
	if err != nil {
		slog.Error("failed to read file", "file", path, "error", err)
		rep.Err = err
		return rep
	}

	res, stats, err := u.annotator.Annotate(ctx, path, src)
	rep.Stats = stats
	if err != nil {
		slog.Error("annotation failed, file left untouched", "file", path, "error", err)
		rep.Err = err
		return rep
	}

	if !res.Changed {
		slog.Info("no missing docstrings, nothing to write", "file", path)
		return rep
	}

	if err := fs.WriteSource(path, res.NewSource, enc); err != nil {
		slog.Error("failed to write file", "file", path, "error", err)
		rep.Err = err
		return rep
	}

	rep.Written = true
	slog.Info("file rewritten", "file", path, "encoding", enc.String())
	return rep
}
