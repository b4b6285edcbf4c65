// Package writer restores sidecar metadata into media files through exiftool.
package writer

import (
	"context"
	"fmt"
	"strings"

	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

// Writer materializes source at dest with rec applied. Source is never
// modified.
type Writer interface {
	Write(ctx context.Context, source, dest string, rec types.MetadataRecord) error
}

// ArgsFunc builds the tool directives for one container type.
type ArgsFunc func(source, dest string, rec types.MetadataRecord) []string

// ToolWriter writes metadata with one ArgsFunc.
type ToolWriter struct {
	tool *Tool
	args ArgsFunc
	name string
}

// NewQuickTimeWriter writes mp4/mov style containers.
func NewQuickTimeWriter(tool *Tool) *ToolWriter {
	return &ToolWriter{tool: tool, args: QuickTimeArgs, name: "quicktime"}
}

// NewImageWriter writes still image formats.
func NewImageWriter(tool *Tool) *ToolWriter {
	return &ToolWriter{tool: tool, args: ImageArgs, name: "image"}
}

func (w *ToolWriter) Name() string {
	return w.name
}

func (w *ToolWriter) Write(ctx context.Context, source, dest string, rec types.MetadataRecord) error {
	if err := w.tool.Run(ctx, w.args(source, dest, rec)); err != nil {
		return fmt.Errorf("%w: %s", err, dest)
	}
	return nil
}

var (
	quickTimeExtensions = []string{"mp4", "mov", "m4v", "3gp"}
	imageExtensions     = []string{"jpg", "jpeg", "heic", "heif", "png", "tif", "tiff", "webp", "dng", "gif"}
)

// Registry dispatches writers by lowercase file extension.
type Registry struct {
	byExt map[string]Writer
}

// NewRegistry returns a registry with the QuickTime and image writers
// registered for their default extensions.
func NewRegistry(tool *Tool) *Registry {
	r := &Registry{byExt: make(map[string]Writer)}
	qt := NewQuickTimeWriter(tool)
	for _, ext := range quickTimeExtensions {
		r.Register(ext, qt)
	}
	img := NewImageWriter(tool)
	for _, ext := range imageExtensions {
		r.Register(ext, img)
	}
	return r
}

func (r *Registry) Register(ext string, w Writer) {
	r.byExt[normalizeExt(ext)] = w
}

// ForExtension returns the writer for ext, accepting "mp4", ".MP4" and so on.
func (r *Registry) ForExtension(ext string) (Writer, bool) {
	w, ok := r.byExt[normalizeExt(ext)]
	return w, ok
}

func normalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(ext), ".")
}
