package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

var videoExtensions = map[string]bool{
	"mp4": true, "mov": true, "m4v": true, "3gp": true, "avi": true,
	"mkv": true, "webm": true, "wmv": true, "mts": true,
}

// sidecarExtension is never reported as media even if configured.
const sidecarExtension = "json"

type Scanner struct {
	includeExt map[string]bool
}

func New(extensions []string) *Scanner {
	extMap := make(map[string]bool)
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.ToLower(ext), ".")
		if ext == sidecarExtension {
			continue
		}
		extMap[ext] = true
	}
	return &Scanner{includeExt: extMap}
}

// Scan walks root and returns media entries in lexical walk order.
func (s *Scanner) Scan(root string) ([]types.FileEntry, error) {
	var entries []types.FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if !s.includeExt[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		entries = append(entries, types.FileEntry{
			Path:      path,
			RelPath:   rel,
			Name:      d.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Extension: ext,
			IsVideo:   videoExtensions[ext],
		})

		return nil
	})

	return entries, err
}
