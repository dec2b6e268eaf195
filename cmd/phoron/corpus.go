package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oyi-lang/phoron-asm/pkg/ctxlog"
	"github.com/oyi-lang/phoron-asm/pkg/driver"
)

func runCorpus(env *commandEnv, args []string) int {
	fs := flag.NewFlagSet("corpus", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	gitURL := fs.String("git", "", "git repository holding the corpus")
	rev := fs.String("rev", "", "commit or revision to check out")
	tag := fs.String("tag", "", "tag to check out")
	branch := fs.String("branch", "", "branch to check out")
	workers := fs.Int("workers", env.config.Corpus.Workers, "parallel parses (0 = NumCPU)")
	exts := fs.String("ext", "", "comma separated file extensions")
	verbose := fs.Bool("v", false, "print the first error of each failed file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "corpus: %v\n", err)
		return 1
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "corpus expects at most one directory")
		return 1
	}
	if *workers < 0 {
		fmt.Fprintf(os.Stderr, "corpus: --workers must not be negative, got %d\n", *workers)
		return 1
	}

	dir := "."
	if fs.NArg() == 1 {
		dir = fs.Arg(0)
	}
	if *gitURL != "" {
		if fs.NArg() == 1 {
			fmt.Fprintln(os.Stderr, "corpus: --git and a directory are mutually exclusive")
			return 1
		}
		fetched, err := fetchCorpus(env, driver.GitSource{URL: *gitURL, Rev: *rev, Tag: *tag, Branch: *branch})
		if err != nil {
			fmt.Fprintf(os.Stderr, "corpus: %v\n", err)
			return 1
		}
		dir = fetched
	} else if *rev != "" || *tag != "" || *branch != "" {
		fmt.Fprintln(os.Stderr, "corpus: --rev, --tag and --branch require --git")
		return 1
	}

	extensions := env.config.Corpus.Extensions
	if *exts != "" {
		extensions = splitExtensions(*exts)
	}
	report, err := driver.RunCorpus(env.ctx, dir, driver.CorpusOptions{
		Extensions: extensions,
		Workers:    *workers,
		Parser:     env.config.ParserOptions(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "corpus: %v\n", err)
		return 1
	}

	for _, res := range report.Results {
		rel, err := filepath.Rel(report.Root, res.Path)
		if err != nil {
			rel = res.Path
		}
		rel = filepath.ToSlash(rel)
		if res.Passed {
			fmt.Fprintf(os.Stdout, "PASSED %s\n", rel)
			continue
		}
		fmt.Fprintf(os.Stdout, "FAILED %s\n", rel)
		if *verbose && res.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", rel, firstLine(res.Err.Error()))
		}
	}
	fmt.Fprintf(os.Stdout, "%d passed, %d failed\n", report.Passed(), report.Failed())
	if report.Failed() > 0 {
		return 1
	}
	return 0
}

// fetchCorpus checks src out into the cache and pins it in the cache's lock
// file, returning the checkout directory.
func fetchCorpus(env *commandEnv, src driver.GitSource) (string, error) {
	logger := ctxlog.FromContext(env.ctx)
	cacheDir, err := env.config.CacheDir()
	if err != nil {
		return "", err
	}
	co, err := driver.FetchGit(env.ctx, cacheDir, src)
	if err != nil {
		return "", err
	}

	lockPath := filepath.Join(cacheDir, driver.LockFileName)
	lock, err := driver.LoadCorpusLock(lockPath, cliToolVersion)
	if err != nil {
		return "", err
	}
	changed, err := lock.Record(src.URL, co)
	if err != nil {
		return "", err
	}
	if changed {
		if err := driver.WriteCorpusLock(lock, lockPath); err != nil {
			return "", err
		}
		logger.Debug("corpus pinned", "url", src.URL, "version", co.Version, "lock", lockPath)
	}
	return co.Dir, nil
}

func splitExtensions(value string) []string {
	var out []string
	for _, ext := range strings.Split(value, ",") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
