package writer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrExifWriterFailed is returned for every failed tool invocation. The tool's
// output never appears in the error.
var ErrExifWriterFailed = errors.New("exif writer failed")

// DefaultBinary is the exiftool executable looked up on PATH.
const DefaultBinary = "exiftool"

// baseOptions: quiet, and preserve the filesystem modification date.
var baseOptions = []string{"-q", "-P"}

// Tool runs the external metadata-writing tool.
type Tool struct {
	Binary string
}

func NewTool(binary string) *Tool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &Tool{Binary: binary}
}

// LookPath reports whether the tool binary can be found.
func (t *Tool) LookPath() (string, error) {
	path, err := exec.LookPath(t.Binary)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", t.Binary, err)
	}
	return path, nil
}

// Run executes the tool synchronously with args. Output is captured and
// dropped.
func (t *Tool) Run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, t.Binary, append(append([]string(nil), baseOptions...), args...)...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return ErrExifWriterFailed
	}
	return nil
}
