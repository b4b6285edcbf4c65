package metadata

import (
	"errors"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// EXIFReader decodes EXIF blocks in JPEG and TIFF files.
type EXIFReader struct{}

func NewEXIFReader() *EXIFReader {
	return &EXIFReader{}
}

func (e *EXIFReader) Read(path string) (Embedded, error) {
	f, err := os.Open(path)
	if err != nil {
		return Embedded{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return Embedded{}, errors.New("no EXIF data: " + err.Error())
	}

	var emb Embedded
	if lat, lon, err := x.LatLong(); err == nil {
		emb.Latitude, emb.Longitude, emb.HasGPS = lat, lon, true
	}

	if t, err := x.DateTime(); err == nil {
		emb.CaptureTime = t.Format(exifTimeLayout)
		emb.Source = "EXIF:DateTimeOriginal"
		return emb, nil
	}

	if tag, err := x.Get(exif.DateTimeDigitized); err == nil {
		if strVal, err := tag.StringVal(); err == nil && strings.TrimSpace(strVal) != "" {
			emb.CaptureTime = strings.TrimSpace(strVal)
			emb.Source = "EXIF:DateTimeDigitized"
			return emb, nil
		}
	}

	return emb, errors.New("no capture time found in EXIF")
}
