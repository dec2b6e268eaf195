package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oyi-lang/phoron-asm/pkg/ctxlog"
	"github.com/oyi-lang/phoron-asm/pkg/parser"
)

// CorpusOptions controls RunCorpus.
type CorpusOptions struct {
	// Extensions selects files by suffix; empty means .pho and .j.
	Extensions []string
	// Workers bounds concurrent parses; zero means runtime.NumCPU.
	Workers int
	Parser  parser.Options
}

// FileResult is the outcome for one corpus file. Err holds the parse or
// read error of a rejected file.
type FileResult struct {
	Path     string
	Passed   bool
	Err      error
	Duration time.Duration
}

type CorpusReport struct {
	Root    string
	Results []FileResult
}

func (r *CorpusReport) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}
	return n
}

func (r *CorpusReport) Failed() int {
	return len(r.Results) - r.Passed()
}

// RunCorpus parses every matching file under dir with the same routine the
// grammar driver uses. Files are parsed concurrently; results come back
// sorted by path. The error is reserved for walk failures and cancellation.
func RunCorpus(ctx context.Context, dir string, opts CorpusOptions) (*CorpusReport, error) {
	logger := ctxlog.FromContext(ctx)
	paths, err := corpusFiles(dir, opts.Extensions)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger.Debug("corpus scheduled", "dir", dir, "files", len(paths), "workers", workers)

	report := &CorpusReport{Root: dir}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := checkFile(gctx, path, opts.Parser)
			mu.Lock()
			report.Results = append(report.Results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Path < report.Results[j].Path
	})
	logger.Debug("corpus finished", "dir", dir, "passed", report.Passed(), "failed", report.Failed())
	return report, nil
}

func checkFile(ctx context.Context, path string, opts parser.Options) FileResult {
	start := time.Now()
	res := FileResult{Path: path}
	f, err := os.Open(path)
	if err == nil {
		err = checkSource(ctx, path, f, opts)
		f.Close()
	}
	res.Passed = err == nil
	res.Err = err
	res.Duration = time.Since(start)
	return res
}

// corpusFiles lists the files under dir whose extension matches, sorted.
func corpusFiles(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = []string{".pho", ".j"}
	}
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range exts {
			if strings.EqualFold(filepath.Ext(path), ext) {
				paths = append(paths, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("corpus: walk %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
