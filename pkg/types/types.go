// Package types defines core data structures used across TakeoutRestore modules.
package types

import (
	"time"
)

// FileEntry represents a scanned media file.
type FileEntry struct {
	// Path is the absolute path to the source file.
	Path string
	// RelPath is the path relative to the scan root, using OS separators.
	RelPath string
	// Name is the base filename.
	Name string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the file modification time.
	ModTime time.Time
	// Extension is the lowercase file extension without dot (e.g., "jpg", "mp4").
	Extension string
	// IsVideo indicates if this is a video file.
	IsVideo bool
}

// MetadataRecord is the per-file metadata recovered from a sidecar.
// It is treated as immutable once built.
type MetadataRecord struct {
	// TakenAt is the capture time in seconds since the Unix epoch.
	TakenAt int64
	// Latitude, Longitude are signed WGS84 degrees.
	Latitude  float64
	Longitude float64
	// Altitude is in meters.
	Altitude    float64
	Description string
	Title       string
}

// RestoreTask represents one planned output file.
type RestoreTask struct {
	// Source is the source FileEntry.
	Source FileEntry
	// Record is the sidecar metadata; nil when none was found.
	Record *MetadataRecord
	// DestPath is the full destination file path.
	DestPath string
	// Status indicates the task status.
	Status TaskStatus
	// Error contains error message if task failed.
	Error string
	// Action indicates what action was taken.
	Action RestoreAction
}

// TaskStatus represents the status of a restore task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusSkipped   TaskStatus = "skipped"
)

// RestoreAction represents the action taken for a file.
type RestoreAction string

const (
	// ActionWritten: metadata was written by the external tool.
	ActionWritten RestoreAction = "written"
	// ActionCopied: no usable record or writer, file copied unchanged.
	ActionCopied      RestoreAction = "copied"
	ActionSkipped     RestoreAction = "skipped"
	ActionRenamed     RestoreAction = "renamed"
	ActionOverwritten RestoreAction = "overwritten"
	ActionFailed      RestoreAction = "failed"
)

// ConflictPolicy defines how to handle an existing destination file.
type ConflictPolicy string

const (
	ConflictPolicySkip      ConflictPolicy = "skip"
	ConflictPolicyRename    ConflictPolicy = "rename"
	ConflictPolicyOverwrite ConflictPolicy = "overwrite"
)

// RunSummary contains statistics for a completed run.
type RunSummary struct {
	ArchivesMerged int
	MergedFiles    int
	ScannedFiles   int
	Written        int
	Copied         int
	Skipped        int
	Renamed        int
	Overwritten    int
	Failed         int
	NoSidecar      int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

// RunStatus represents the outcome of a run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// RunConfig contains the configuration used for a run.
type RunConfig struct {
	Source         string         `json:"source"`
	Dest           string         `json:"dest"`
	ZipFolder      bool           `json:"zip_folder"`
	ExtractDir     string         `json:"extract_dir,omitempty"`
	ConflictPolicy ConflictPolicy `json:"conflict_policy"`
	DryRun         bool           `json:"dry_run"`
	Verify         bool           `json:"verify"`
	IgnoreState    bool           `json:"ignore_state"`
	Jobs           int            `json:"jobs"`
}

// RunHistoryEntry represents a single run record.
type RunHistoryEntry struct {
	ID        string     `json:"id"`
	Summary   RunSummary `json:"summary"`
	Config    RunConfig  `json:"config"`
	Status    RunStatus  `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// RunHistory stores the collection of run history entries.
type RunHistory struct {
	Entries   []RunHistoryEntry `json:"entries"`
	UpdatedAt time.Time         `json:"updated_at"`
}
