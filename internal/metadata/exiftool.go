package metadata

import (
	"errors"
	"fmt"
	"sync"

	"github.com/barasher/go-exiftool"
)

// dateTags are tried in order; QuickTime files carry CreateDate.
var dateTags = []string{"DateTimeOriginal", "CreateDate", "MediaCreateDate"}

// ExiftoolReader keeps one exiftool process open in stay_open mode.
type ExiftoolReader struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

func NewExiftoolReader(binary string) (*ExiftoolReader, error) {
	// -n: dates stay in exiftool layout and coordinates come back as signed decimals.
	opts := []func(*exiftool.Exiftool) error{exiftool.NoPrintConversion()}
	if binary != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(binary))
	}

	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &ExiftoolReader{et: et}, nil
}

func (r *ExiftoolReader) Read(path string) (Embedded, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := r.et.ExtractMetadata(path)
	if len(results) == 0 {
		return Embedded{}, errors.New("exiftool returned no metadata")
	}
	fm := results[0]
	if fm.Err != nil {
		return Embedded{}, fm.Err
	}

	return embeddedFrom(fm)
}

func embeddedFrom(fm exiftool.FileMetadata) (Embedded, error) {
	var emb Embedded
	lat, latErr := fm.GetFloat("GPSLatitude")
	lon, lonErr := fm.GetFloat("GPSLongitude")
	if latErr == nil && lonErr == nil {
		emb.Latitude, emb.Longitude, emb.HasGPS = lat, lon, true
	}

	for _, tag := range dateTags {
		if v, err := fm.GetString(tag); err == nil && v != "" {
			emb.CaptureTime = v
			emb.Source = "exiftool:" + tag
			return emb, nil
		}
	}
	return emb, errors.New("no capture time found by exiftool")
}

func (r *ExiftoolReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.et.Close()
}
