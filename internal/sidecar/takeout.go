// Package sidecar reads Google Takeout JSON sidecars into metadata records.
package sidecar

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

// Source supplies the metadata record for a media file.
type Source interface {
	// Lookup returns ok=false when the media file has no sidecar.
	Lookup(mediaPath string) (rec types.MetadataRecord, ok bool, err error)
}

// Suffixes are tried in order after the full media file name.
var Suffixes = []string{".json", ".supplemental-metadata.json"}

type takeoutTimestamp struct {
	Timestamp string `json:"timestamp"`
	Formatted string `json:"formatted"`
}

type takeoutGeo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

type takeoutMetadata struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	PhotoTakenTime takeoutTimestamp `json:"photoTakenTime"`
	GeoData        takeoutGeo       `json:"geoData"`
}

type TakeoutSource struct{}

func NewTakeoutSource() *TakeoutSource {
	return &TakeoutSource{}
}

func (s *TakeoutSource) Lookup(mediaPath string) (types.MetadataRecord, bool, error) {
	path := s.FindSidecar(mediaPath)
	if path == "" {
		return types.MetadataRecord{}, false, nil
	}
	rec, err := ParseFile(path)
	if err != nil {
		return types.MetadataRecord{}, false, err
	}
	return rec, true, nil
}

// FindSidecar returns the sidecar path for mediaPath, or "" when none exists.
func (s *TakeoutSource) FindSidecar(mediaPath string) string {
	for _, suffix := range Suffixes {
		candidate := mediaPath + suffix
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func ParseFile(path string) (types.MetadataRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.MetadataRecord{}, fmt.Errorf("failed to read sidecar: %w", err)
	}
	rec, err := Parse(data)
	if err != nil {
		return types.MetadataRecord{}, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Parse decodes one sidecar document. Missing geoData yields zero coordinates.
func Parse(data []byte) (types.MetadataRecord, error) {
	var meta takeoutMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return types.MetadataRecord{}, fmt.Errorf("failed to parse sidecar: %w", err)
	}

	raw := strings.TrimSpace(meta.PhotoTakenTime.Timestamp)
	if raw == "" {
		return types.MetadataRecord{}, fmt.Errorf("sidecar has no photoTakenTime.timestamp")
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return types.MetadataRecord{}, fmt.Errorf("invalid photoTakenTime.timestamp %q: %w", raw, err)
	}

	return types.MetadataRecord{
		TakenAt:     ts,
		Latitude:    meta.GeoData.Latitude,
		Longitude:   meta.GeoData.Longitude,
		Altitude:    meta.GeoData.Altitude,
		Description: meta.Description,
		Title:       meta.Title,
	}, nil
}
