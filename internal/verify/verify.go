package verify

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/On-Jun9/TakeoutRestore/internal/metadata"
	"github.com/On-Jun9/TakeoutRestore/internal/writer"
	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

// gpsTolerance is in degrees.
const gpsTolerance = 1e-4

var exifExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

// Verifier reads a written output back and compares it with its record.
// JPEG/TIFF files are decoded in-process; everything else goes through a
// shared exiftool process started on first use.
type Verifier struct {
	exif   metadata.Reader
	binary string

	once      sync.Once
	tool      *metadata.ExiftoolReader
	toolError error
}

func New(exiftoolBinary string) *Verifier {
	return &Verifier{
		exif:   metadata.NewEXIFReader(),
		binary: exiftoolBinary,
	}
}

func (v *Verifier) Verify(path string, rec types.MetadataRecord) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("destination file not found: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("destination file is empty: %s", path)
	}

	reader, err := v.readerFor(path)
	if err != nil {
		return err
	}

	emb, err := reader.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read back metadata: %w", err)
	}

	expected := writer.FormatTakenAt(rec.TakenAt)
	if emb.CaptureTime != expected {
		return fmt.Errorf("capture time mismatch: expected %s, got %s (%s)", expected, emb.CaptureTime, emb.Source)
	}

	if emb.HasGPS && (rec.Latitude != 0 || rec.Longitude != 0) {
		if math.Abs(emb.Latitude-rec.Latitude) > gpsTolerance || math.Abs(emb.Longitude-rec.Longitude) > gpsTolerance {
			return fmt.Errorf("gps mismatch: expected %f,%f, got %f,%f", rec.Latitude, rec.Longitude, emb.Latitude, emb.Longitude)
		}
	}

	return nil
}

func (v *Verifier) readerFor(path string) (metadata.Reader, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if exifExtensions[ext] {
		return v.exif, nil
	}

	v.once.Do(func() {
		v.tool, v.toolError = metadata.NewExiftoolReader(v.binary)
	})
	if v.toolError != nil {
		return nil, v.toolError
	}
	return v.tool, nil
}

// Close stops the exiftool process if one was started.
func (v *Verifier) Close() error {
	if v.tool != nil {
		return v.tool.Close()
	}
	return nil
}
