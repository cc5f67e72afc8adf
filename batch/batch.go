// Package batch runs a Piet program over every image file in a
// directory, on a bounded worker pool, aggregating per-file outcomes
// and optionally quarantining the images that didn't run cleanly.
package batch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"piet/grid"
	"piet/interp"
	"piet/parallel"
)

// Outcome classifies how one file's run ended.
type Outcome int

const (
	StartError Outcome = iota
	Completed
	Capped
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Capped:
		return "capped"
	default:
		return "start-error"
	}
}

// FileResult is one file's outcome.
type FileResult struct {
	Path    string
	Outcome Outcome
	Steps   int
	Err     error
}

// Options configures a batch Run.
type Options struct {
	// Workers bounds the worker pool; zero uses GOMAXPROCS.
	Workers int
	// MaxIter caps every program's step count, zero for unlimited.
	MaxIter int
	// GridOptions is passed to grid.Build for every file.
	GridOptions grid.Options
	// Quarantine, if non-empty, receives a copy of the source image
	// of every StartError or Capped run.
	Quarantine string
	Logger     *slog.Logger
}

// Run scans dir non-recursively, running every regular file that
// decodes as an image through the full interpreter on a bounded
// worker pool. Each program's standard input is empty: there is one
// shared stdin and no way to route it to N concurrent programs.
func Run(dir string, opts Options) ([]FileResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Quarantine != "" {
		if err := os.MkdirAll(opts.Quarantine, 0o755); err != nil {
			return nil, fmt.Errorf("could not create quarantine folder %q: %w", opts.Quarantine, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read folder %q: %w", dir, err)
	}

	pool := parallel.Start(opts.Workers)

	var mu sync.Mutex
	var results []FileResult
	var completedCount, cappedCount, errCount atomic.Uint64

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		pool.Do(func() {
			res := runOne(filepath.Join(dir, name), opts, logger)

			switch res.Outcome {
			case Completed:
				completedCount.Add(1)
			case Capped:
				cappedCount.Add(1)
				quarantine(opts.Quarantine, res.Path, logger)
			case StartError:
				errCount.Add(1)
				quarantine(opts.Quarantine, res.Path, logger)
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		})
	}

	pool.Wait(true)

	logger.Info("batch stats",
		"completed", completedCount.Load(),
		"capped", cappedCount.Load(),
		"errors", errCount.Load(),
		"total", len(entries))

	return results, nil
}

func runOne(path string, opts Options, logger *slog.Logger) FileResult {
	fileLogger := logger.With("file", path)

	img, _, err := grid.Decode(path)
	if err != nil {
		fileLogger.Warn("could not decode image", "error", err)
		return FileResult{Path: path, Outcome: StartError, Err: err}
	}

	g, err := grid.Build(img, opts.GridOptions)
	if err != nil {
		fileLogger.Warn("could not build grid", "error", err)
		return FileResult{Path: path, Outcome: StartError, Err: err}
	}

	status, steps, err := interp.Run(g, strings.NewReader(""), io.Discard, interp.Options{MaxIter: opts.MaxIter})
	if err != nil {
		fileLogger.Warn("run failed", "error", err)
		return FileResult{Path: path, Outcome: StartError, Steps: steps, Err: err}
	}

	if status == interp.Capped {
		fileLogger.Info("run capped", "steps", steps)
		return FileResult{Path: path, Outcome: Capped, Steps: steps}
	}

	fileLogger.Info("run completed", "steps", steps)
	return FileResult{Path: path, Outcome: Completed, Steps: steps}
}

func quarantine(dir, src string, logger *slog.Logger) {
	if dir == "" {
		return
	}
	dest := filepath.Join(dir, filepath.Base(src))
	if err := copyFile(src, dest); err != nil {
		logger.Error("could not quarantine file", "file", src, "error", err)
	}
}

func copyFile(src, dest string) error {
	if err := checkFile(src, dest); err != nil {
		return err
	}

	inFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("could not open source file %q: %w", src, err)
	}
	defer inFile.Close()

	outFile, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("could not open destination file %q: %w", dest, err)
	}
	defer outFile.Close()

	if _, err = io.Copy(outFile, inFile); err != nil {
		return fmt.Errorf("could not copy from %q to %q: %w", src, dest, err)
	}
	return outFile.Sync()
}

func checkFile(src, dest string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("cannot stat source file %q: %w", src, err)
	}
	if !srcInfo.Mode().IsRegular() {
		return fmt.Errorf("cannot copy non-regular file %q: %s", srcInfo.Name(), srcInfo.Mode())
	}

	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("destination file already exists: %q", dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
	}
	return nil
}
