// Package metadata reads the capture time and location embedded in media files.
package metadata

// Embedded is what a reader found inside a media file.
type Embedded struct {
	// CaptureTime uses the exiftool layout "2006:01:02 15:04:05".
	CaptureTime string
	// Source names the tag the capture time came from (e.g. "EXIF:DateTimeOriginal").
	Source    string
	Latitude  float64
	Longitude float64
	HasGPS    bool
}

// Reader extracts embedded metadata from a file.
type Reader interface {
	Read(path string) (Embedded, error)
}
