// Package runner patches every mesh snapshot under a directory tree with a
// shared rule engine and writes the modified meshes to an output tree.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/nifpatch/internal/patch"
	"github.com/Faultbox/nifpatch/internal/rules"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

// ErrNoMeshesDir is returned when the meshes directory does not exist.
var ErrNoMeshesDir = errors.New("meshes directory not found")

// Options configures a run.
type Options struct {
	MeshesDir string
	OutputDir string
	Workers   int  // 0 means one per CPU
	DryRun    bool // patch in memory only
}

// Failure is a mesh that could not be loaded or saved.
type Failure struct {
	File string
	Err  error
}

// Summary collects the outcome of a run.
type Summary struct {
	Scanned     int
	Modified    int
	Failed      int
	Shapes      int // shapes modified, deleted ones included
	Deleted     int
	Diagnostics []patch.Diagnostic
	Failures    []Failure
	Elapsed     time.Duration
}

// Err combines all failures, or returns nil when every file went through.
func (s *Summary) Err() error {
	var err error
	for _, f := range s.Failures {
		err = multierr.Append(err, fmt.Errorf("%s: %w", f.File, f.Err))
	}
	return err
}

type fileResult struct {
	file     string
	modified bool
	result   *patch.Result
	err      error
}

// Runner walks the meshes directory and patches each mesh file.
type Runner struct {
	eng  *patch.Engine
	opts Options
	log  *zap.Logger
}

// New creates a runner. A nil log discards output.
func New(eng *patch.Engine, opts Options, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Runner{eng: eng, opts: opts, log: log}
}

// Find returns the mesh files under the meshes directory, relative to it
// and in lexical order. The output directory is skipped when it lies inside
// the meshes directory.
func (r *Runner) Find() ([]string, error) {
	info, err := os.Stat(r.opts.MeshesDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoMeshesDir, r.opts.MeshesDir)
	}

	outDir, err := filepath.Abs(r.opts.OutputDir)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(r.opts.MeshesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if abs, _ := filepath.Abs(path); abs == outDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), nif.Extension) {
			return nil
		}
		rel, err := filepath.Rel(r.opts.MeshesDir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", r.opts.MeshesDir, err)
	}
	return files, nil
}

// Run patches every mesh file. Files are fanned out to the configured number
// of workers; cancellation is checked between files and leaves the summary of
// the files done so far.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	files, err := r.Find()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	r.log.Info("Scanning meshes",
		zap.String("dir", r.opts.MeshesDir),
		zap.Int("files", len(files)),
		zap.Int("workers", r.opts.Workers),
		zap.Bool("dry_run", r.opts.DryRun),
	)

	jobs := make(chan string)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	for range r.opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				results <- r.processFile(file)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, file := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- file:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	sum := &Summary{}
	for res := range results {
		sum.add(res)
	}
	sum.sort()
	sum.Elapsed = time.Since(start)

	r.log.Info("Processing complete",
		zap.Int("scanned", sum.Scanned),
		zap.Int("modified", sum.Modified),
		zap.Int("failed", sum.Failed),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return sum, ctx.Err()
}

func (s *Summary) add(res fileResult) {
	s.Scanned++
	if res.result != nil {
		s.Diagnostics = append(s.Diagnostics, res.result.Diagnostics...)
		for _, sr := range res.result.Shapes {
			if sr.Modified {
				s.Shapes++
			}
			if sr.Deleted {
				s.Deleted++
			}
		}
	}
	switch {
	case res.err != nil:
		s.Failed++
		s.Failures = append(s.Failures, Failure{File: res.file, Err: res.err})
	case res.modified:
		s.Modified++
	}
}

// sort orders the collected results by file; workers finish out of order.
func (s *Summary) sort() {
	slices.SortStableFunc(s.Diagnostics, func(a, b patch.Diagnostic) int {
		return strings.Compare(a.File, b.File)
	})
	slices.SortFunc(s.Failures, func(a, b Failure) int {
		return strings.Compare(a.File, b.File)
	})
}

func (r *Runner) processFile(rel string) fileResult {
	name := MatchName(r.opts.MeshesDir, rel)
	res := fileResult{file: name}
	log := r.log.With(zap.String("file", name))
	log.Debug("Processing mesh")

	mesh, err := nif.Load(filepath.Join(r.opts.MeshesDir, rel))
	if err != nil {
		log.Error("Error opening mesh", zap.Error(err))
		res.err = fmt.Errorf("loading mesh: %w", err)
		return res
	}

	res.result = r.eng.Apply(mesh, name)
	if !res.result.Modified {
		log.Debug("No changes applied")
		return res
	}
	res.modified = true

	if r.opts.DryRun {
		log.Info("Modified (dry run)")
		return res
	}

	out := r.OutputPath(rel)
	if err := nif.Save(out, mesh); err != nil {
		log.Error("Error saving mesh", zap.String("output", out), zap.Error(err))
		res.err = fmt.Errorf("saving %s: %w", out, err)
		return res
	}
	log.Info("Saved patched mesh", zap.String("output", out))
	return res
}

// OutputPath returns where the patched copy of rel is written. The meshes
// folder name is kept so the output tree can replace the game data folder.
func (r *Runner) OutputPath(rel string) string {
	return filepath.Join(r.opts.OutputDir, filepath.Base(filepath.Clean(r.opts.MeshesDir)), rel)
}

// MatchName returns the path nif_filter rules are matched against: the mesh
// path including the meshes folder, with game separators.
func MatchName(meshesDir, rel string) string {
	p := filepath.ToSlash(filepath.Join(filepath.Base(filepath.Clean(meshesDir)), rel))
	return strings.ReplaceAll(p, "/", rules.Separator)
}
