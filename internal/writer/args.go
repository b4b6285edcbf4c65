package writer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

// ExifTimeLayout is the timestamp layout exiftool expects for date tags.
const ExifTimeLayout = "2006:01:02 15:04:05"

// GPSVersion is written with every GPS block.
const GPSVersion = "2 0 0 0"

var (
	latitudeRefs  = [2]string{"S", "N"}
	longitudeRefs = [2]string{"W", "E"}
)

// QuickTimeArgs translates rec into the exiftool directives for a QuickTime
// container (mp4, mov). The result is freshly allocated and depends only on
// its inputs.
func QuickTimeArgs(source, dest string, rec types.MetadataRecord) []string {
	args := make([]string, 0, 20)
	args = append(args, dateArgs(rec.TakenAt, "CreateDate", "ModifyDate", "MediaCreateDate", "MediaModifyDate")...)
	args = append(args, gpsArgs(rec)...)
	args = append(args, textArgs("Description", rec.Description)...)
	args = append(args, textArgs("Comment", rec.Description)...)
	args = append(args, textArgs("Title", rec.Title)...)
	return append(args, outputArgs(source, dest)...)
}

// ImageArgs translates rec into the exiftool directives for still images.
func ImageArgs(source, dest string, rec types.MetadataRecord) []string {
	args := make([]string, 0, 20)
	args = append(args, dateArgs(rec.TakenAt, "DateTimeOriginal", "CreateDate", "ModifyDate")...)
	args = append(args, gpsArgs(rec)...)
	args = append(args, textArgs("ImageDescription", rec.Description)...)
	args = append(args, textArgs("Caption-Abstract", rec.Description)...)
	args = append(args, textArgs("Title", rec.Title)...)
	return append(args, outputArgs(source, dest)...)
}

// FormatTakenAt renders an epoch timestamp in local time using ExifTimeLayout.
func FormatTakenAt(epoch int64) string {
	return time.Unix(epoch, 0).Local().Format(ExifTimeLayout)
}

// dateArgs assigns one formatted timestamp to every tag.
func dateArgs(epoch int64, tags ...string) []string {
	formatted := FormatTakenAt(epoch)
	args := make([]string, len(tags))
	for i, tag := range tags {
		args[i] = "-" + tag + "=" + formatted
	}
	return args
}

func gpsArgs(rec types.MetadataRecord) []string {
	altitude := formatFloat(RoundAltitude(rec.Altitude))
	return []string{
		"-GPSVersionID=" + GPSVersion,
		"-GPSLatitudeRef=" + direction(rec.Latitude, latitudeRefs),
		"-GPSLatitude=" + formatFloat(rec.Latitude),
		"-GPSLongitudeRef=" + direction(rec.Longitude, longitudeRefs),
		"-GPSLongitude=" + formatFloat(rec.Longitude),
		// The reference tag receives the same rounded value as the altitude.
		"-GPSAltitudeRef=" + altitude,
		"-GPSAltitude=" + altitude,
	}
}

func textArgs(tag, value string) []string {
	return []string{"-" + tag + "=" + value}
}

func outputArgs(source, dest string) []string {
	return []string{source, "-o", dest}
}

// direction picks refs[0] for negative values, refs[1] for positive and ""
// for zero.
func direction(value float64, refs [2]string) string {
	switch {
	case value < 0:
		return refs[0]
	case value > 0:
		return refs[1]
	default:
		return ""
	}
}

// RoundAltitude returns |alt| rounded to four decimal places. Rounding is
// applied to the exact binary value, so 0.00035 (stored slightly below the
// tie) becomes 0.0003.
func RoundAltitude(alt float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(math.Abs(alt), 'f', 4, 64), 64)
	return v
}

// formatFloat renders v as the shortest round-trip decimal. Whole numbers keep
// a ".0" suffix and magnitudes below 1e-4 or from 1e16 up use exponent form.
func formatFloat(v float64) string {
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
