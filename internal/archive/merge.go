// Package archive reassembles a single file tree from split export archives.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const (
	// DefaultWrapperPrefix marks the per-export top-level folder
	// (e.g. "takeout-20251108T080515Z-1") that is dropped during merge.
	DefaultWrapperPrefix = "takeout-"
	// DefaultExtension is the archive file extension considered by Merge.
	DefaultExtension = ".zip"
)

var (
	ErrArchiveSourceNotFound = errors.New("archive source not found")
	ErrNoArchivesFound       = errors.New("no archives found")
	ErrExtractionFailed      = errors.New("extraction failed")
)

// Merger extracts every archive in a directory into one destination tree.
// The first archive (in name order) to provide a path wins.
type Merger struct {
	fs        afero.Fs
	Prefix    string
	Extension string
}

// MergeStats reports what a merge did.
type MergeStats struct {
	Archives int
	Written  int
	Skipped  int
}

// New returns a Merger on the OS filesystem.
func New(prefix string) *Merger {
	return NewWithFs(afero.NewOsFs(), prefix)
}

func NewWithFs(fs afero.Fs, prefix string) *Merger {
	if prefix == "" {
		prefix = DefaultWrapperPrefix
	}
	return &Merger{fs: fs, Prefix: prefix, Extension: DefaultExtension}
}

// Merge extracts the archives in sourceDir into destDir and returns destDir.
func (m *Merger) Merge(sourceDir, destDir string) (string, error) {
	_, err := m.MergeWithStats(sourceDir, destDir)
	if err != nil {
		return "", err
	}
	return destDir, nil
}

func (m *Merger) MergeWithStats(sourceDir, destDir string) (MergeStats, error) {
	var stats MergeStats

	archives, err := m.List(sourceDir)
	if err != nil {
		return stats, err
	}

	if err := m.fs.MkdirAll(destDir, 0755); err != nil {
		return stats, fmt.Errorf("%w: create %s: %v", ErrExtractionFailed, destDir, err)
	}

	for _, path := range archives {
		written, skipped, err := m.extract(path, destDir)
		stats.Written += written
		stats.Skipped += skipped
		if err != nil {
			return stats, err
		}
		stats.Archives++
	}

	return stats, nil
}

// List returns the archive files directly inside sourceDir, sorted by name.
func (m *Merger) List(sourceDir string) ([]string, error) {
	info, err := m.fs.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArchiveSourceNotFound, sourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrArchiveSourceNotFound, sourceDir)
	}

	entries, err := afero.ReadDir(m.fs, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArchiveSourceNotFound, sourceDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), m.Extension) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoArchivesFound, sourceDir)
	}

	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(sourceDir, name)
	}
	return paths, nil
}

func (m *Merger) extract(archivePath, destDir string) (written, skipped int, err error) {
	f, err := m.fs.Open(archivePath)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: open %s: %v", ErrExtractionFailed, archivePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: stat %s: %v", ErrExtractionFailed, archivePath, err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return 0, 0, fmt.Errorf("%w: read %s: %v", ErrExtractionFailed, archivePath, err)
	}

	for _, member := range zr.File {
		if strings.HasSuffix(member.Name, "/") {
			continue
		}

		rel := DestRelPath(member.Name, m.Prefix)
		if rel == "" || !filepath.IsLocal(rel) {
			return written, skipped, fmt.Errorf("%w: %s: unsafe member path %q", ErrExtractionFailed, archivePath, member.Name)
		}

		destPath := filepath.Join(destDir, rel)
		if err := m.fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return written, skipped, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, destPath, err)
		}

		if _, err := m.fs.Stat(destPath); err == nil {
			skipped++
			continue
		} else if !os.IsNotExist(err) {
			return written, skipped, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, destPath, err)
		}

		if err := m.writeMember(member, destPath); err != nil {
			return written, skipped, fmt.Errorf("%w: %s: %s: %v", ErrExtractionFailed, archivePath, member.Name, err)
		}
		written++
	}

	return written, skipped, nil
}

func (m *Merger) writeMember(member *zip.File, destPath string) error {
	rc, err := member.Open()
	if err != nil {
		return err
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return err
	}

	partPath := destPath + ".part"
	if err := afero.WriteFile(m.fs, partPath, data, 0644); err != nil {
		m.fs.Remove(partPath)
		return err
	}
	if err := m.fs.Rename(partPath, destPath); err != nil {
		m.fs.Remove(partPath)
		return err
	}
	return nil
}

// DestRelPath maps an archive member name to its path inside the merged tree.
// A leading segment starting with prefix is dropped when more segments follow.
func DestRelPath(member, prefix string) string {
	var parts []string
	for _, p := range strings.Split(member, "/") {
		if p == "" || p == "." {
			continue
		}
		parts = append(parts, p)
	}
	if len(parts) > 1 && prefix != "" && strings.HasPrefix(parts[0], prefix) {
		parts = parts[1:]
	}
	return filepath.Join(parts...)
}
