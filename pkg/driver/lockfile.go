package driver

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockFileName is the corpus lock kept in the cache directory.
const LockFileName = "corpus.lock"

// CorpusLock records every git corpus fetched into a cache, pinned to the
// commit it resolved to and the checksum of its files.
type CorpusLock struct {
	Path      string
	Generated string
	Tool      string
	Corpora   []*LockedCorpus
}

type LockedCorpus struct {
	Name     string
	Version  string
	Source   string
	Checksum string
}

// ErrChecksumMismatch reports a cached corpus whose files no longer match
// the lock.
var ErrChecksumMismatch = errors.New("corpus checksum mismatch")

func NewCorpusLock(tool string) *CorpusLock {
	return &CorpusLock{
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
	}
}

// LoadCorpusLock reads a lock file. A missing file yields an empty lock bound
// to path.
func LoadCorpusLock(path, tool string) (*CorpusLock, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if errors.Is(err, os.ErrNotExist) {
		lock := NewCorpusLock(tool)
		lock.Path = abs
		return lock, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}
	lock := raw.toLock()
	lock.Path = abs
	return lock, nil
}

// WriteCorpusLock serialises lock to path, or to lock.Path when path is empty.
func WriteCorpusLock(lock *CorpusLock, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lock")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	lock.Generated = time.Now().UTC().Format(time.RFC3339)
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("lockfile: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the entry for name at version.
func (l *CorpusLock) Find(name, version string) *LockedCorpus {
	for _, c := range l.Corpora {
		if c.Name == name && c.Version == version {
			return c
		}
	}
	return nil
}

// Record adds the checkout of the corpus at url. It reports whether the lock
// changed, and fails when a previously recorded checkout of the same version
// now has different contents.
func (l *CorpusLock) Record(url string, co *Checkout) (bool, error) {
	name := sanitizePathSegment(repoName(url))
	source := fmt.Sprintf("git+%s@%s", strings.TrimSpace(url), co.Commit)
	if existing := l.Find(name, co.Version); existing != nil {
		if existing.Checksum != co.Checksum {
			return false, fmt.Errorf("%w: %s %s locked at %s, found %s",
				ErrChecksumMismatch, name, co.Version, existing.Checksum, co.Checksum)
		}
		if existing.Source == source {
			return false, nil
		}
		existing.Source = source
		return true, nil
	}
	l.Corpora = append(l.Corpora, &LockedCorpus{
		Name:     name,
		Version:  co.Version,
		Source:   source,
		Checksum: co.Checksum,
	})
	l.normalize()
	return true, nil
}

func (l *CorpusLock) normalize() {
	l.Tool = strings.TrimSpace(l.Tool)
	for _, c := range l.Corpora {
		c.Name = sanitizePathSegment(c.Name)
		c.Version = strings.TrimSpace(c.Version)
		c.Source = strings.TrimSpace(c.Source)
		c.Checksum = strings.TrimSpace(c.Checksum)
	}
	sort.SliceStable(l.Corpora, func(i, j int) bool {
		if l.Corpora[i].Name == l.Corpora[j].Name {
			return l.Corpora[i].Version < l.Corpora[j].Version
		}
		return l.Corpora[i].Name < l.Corpora[j].Name
	})
}

type lockfileDisk struct {
	Generated string          `yaml:"generated"`
	Tool      string          `yaml:"tool"`
	Corpora   []lockfileEntry `yaml:"corpora"`
}

type lockfileEntry struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Checksum string `yaml:"checksum"`
}

func (l *CorpusLock) toDisk() lockfileDisk {
	entries := make([]lockfileEntry, 0, len(l.Corpora))
	for _, c := range l.Corpora {
		entries = append(entries, lockfileEntry{
			Name:     c.Name,
			Version:  c.Version,
			Source:   c.Source,
			Checksum: c.Checksum,
		})
	}
	return lockfileDisk{Generated: l.Generated, Tool: l.Tool, Corpora: entries}
}

func (d lockfileDisk) toLock() *CorpusLock {
	lock := &CorpusLock{
		Generated: strings.TrimSpace(d.Generated),
		Tool:      d.Tool,
		Corpora:   make([]*LockedCorpus, 0, len(d.Corpora)),
	}
	for _, e := range d.Corpora {
		lock.Corpora = append(lock.Corpora, &LockedCorpus{
			Name:     e.Name,
			Version:  e.Version,
			Source:   e.Source,
			Checksum: e.Checksum,
		})
	}
	lock.normalize()
	return lock
}
