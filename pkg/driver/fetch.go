package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/oyi-lang/phoron-asm/pkg/ctxlog"
)

// GitSource names a corpus repository and the revision to check out. Exactly
// one of Rev, Tag or Branch is consulted, in that order.
type GitSource struct {
	URL    string
	Rev    string
	Tag    string
	Branch string
}

// Checkout is a corpus fetched into the cache.
type Checkout struct {
	Dir      string
	Version  string
	Commit   string
	Checksum string
}

// FetchGit clones src into cacheDir/corpus/<name>/<version> unless that
// checkout already exists, where version pins the resolved commit.
func FetchGit(ctx context.Context, cacheDir string, src GitSource) (*Checkout, error) {
	url := strings.TrimSpace(src.URL)
	if url == "" {
		return nil, fmt.Errorf("fetch: git URL required")
	}
	if cacheDir == "" {
		return nil, fmt.Errorf("fetch: cache directory required")
	}
	logger := ctxlog.FromContext(ctx)

	baseDir := filepath.Join(cacheDir, "corpus", sanitizePathSegment(repoName(url)))
	version, commit, err := ensureGitCheckout(ctx, baseDir, url, src)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(baseDir, sanitizePathSegment(version))
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, fmt.Errorf("fetch: checksum %s: %w", dir, err)
	}
	logger.Debug("corpus fetched", "url", url, "version", version, "dir", dir)
	return &Checkout{Dir: dir, Version: version, Commit: commit, Checksum: checksum}, nil
}

func ensureGitCheckout(ctx context.Context, baseDir, url string, src GitSource) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}
	revision, descriptor, err := gitRevision(src)
	if err != nil {
		return "", "", err
	}

	if rev := strings.TrimSpace(src.Rev); rev != "" {
		if version, commit, ok := cachedCommit(baseDir, rev); ok {
			return version, commit, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := pinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitRevision(src GitSource) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(src.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(src.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(src.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("fetch: git corpus requires rev, tag, or branch")
}

// cachedCommit finds an earlier checkout of rev when rev is a full or
// abbreviated commit hash. Branches, tags and symbolic revisions such as HEAD
// can move, so they are always resolved against the repository.
func cachedCommit(baseDir, rev string) (string, string, bool) {
	if !isCommitPrefix(rev) {
		return "", "", false
	}
	lower := strings.ToLower(rev)
	if len(rev) == hashLength {
		if _, err := os.Stat(filepath.Join(baseDir, lower)); err == nil {
			return lower, lower, true
		}
		return "", "", false
	}
	matches, err := filepath.Glob(filepath.Join(baseDir, sanitizePathSegment(rev)+"_*"))
	if err != nil {
		return "", "", false
	}
	for _, match := range matches {
		commit := strings.TrimPrefix(filepath.Base(match), sanitizePathSegment(rev)+"_")
		if len(commit) == hashLength && isCommitPrefix(commit) && strings.HasPrefix(commit, lower) {
			return pinnedVersion(rev, commit), commit, true
		}
	}
	return "", "", false
}

const hashLength = 40

// isCommitPrefix reports whether rev could name a commit by (part of) its hash.
func isCommitPrefix(rev string) bool {
	if len(rev) < 4 || len(rev) > hashLength {
		return false
	}
	for _, r := range rev {
		if !(r >= '0' && r <= '9') && !(r >= 'a' && r <= 'f') && !(r >= 'A' && r <= 'F') {
			return false
		}
	}
	return true
}

func pinnedVersion(descriptor, commit string) string {
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return descriptor + "@" + commit
}

// repoName derives a directory name from the last path element of url.
func repoName(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}
	return strings.TrimSuffix(url, ".git")
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "head"
	}
	return b.String()
}

// dirChecksum hashes relative paths and contents of every file under path,
// skipping .git, in lexical order.
func dirChecksum(path string) (string, error) {
	var files []string
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(files)

	h := sha256.New()
	for _, p := range files {
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
