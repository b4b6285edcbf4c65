package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/On-Jun9/TakeoutRestore/internal/archive"
	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

// DataDirName is the per-user directory holding state, logs and history.
const DataDirName = ".takeoutrestore"

type Config struct {
	Source            string               `yaml:"source" toml:"source" json:"source"`
	Dest              string               `yaml:"dest" toml:"dest" json:"dest"`
	ZipFolder         bool                 `yaml:"zip_folder" toml:"zip_folder" json:"zip_folder"`
	ExtractDir        string               `yaml:"extract_dir" toml:"extract_dir" json:"extract_dir"`
	WrapperPrefix     string               `yaml:"wrapper_prefix" toml:"wrapper_prefix" json:"wrapper_prefix"`
	IncludeExtensions []string             `yaml:"include_extensions" toml:"include_extensions" json:"include_extensions"`
	Jobs              int                  `yaml:"jobs" toml:"jobs" json:"jobs"`
	ConflictPolicy    types.ConflictPolicy `yaml:"conflict_policy" toml:"conflict_policy" json:"conflict_policy"`
	ExiftoolPath      string               `yaml:"exiftool_path" toml:"exiftool_path" json:"exiftool_path"`
	StateFile         string               `yaml:"state_file" toml:"state_file" json:"state_file"`
	LogFile           string               `yaml:"log_file" toml:"log_file" json:"log_file"`
	LogJSON           bool                 `yaml:"log_json" toml:"log_json" json:"log_json"`
	DryRun            bool                 `yaml:"dry_run" toml:"dry_run" json:"dry_run"`
	Verify            bool                 `yaml:"verify" toml:"verify" json:"verify"`
	IgnoreState       bool                 `yaml:"ignore_state" toml:"ignore_state" json:"ignore_state"`
}

// DefaultExtensions lists the media types a Takeout export contains.
func DefaultExtensions() []string {
	return []string{
		"jpg", "jpeg", "heic", "heif", "png", "gif", "webp", "tif", "tiff", "dng",
		"mp4", "mov", "m4v", "3gp", "avi", "mkv",
	}
}

func defaultJobs() int {
	jobs := runtime.NumCPU()
	if jobs < 1 {
		jobs = 4
	}
	return jobs
}

// DataDir returns ~/.takeoutrestore.
func DataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, DataDirName)
}

func DefaultConfig() *Config {
	dataDir := DataDir()

	return &Config{
		WrapperPrefix:     archive.DefaultWrapperPrefix,
		IncludeExtensions: DefaultExtensions(),
		Jobs:              defaultJobs(),
		ConflictPolicy:    types.ConflictPolicySkip,
		ExiftoolPath:      "exiftool",
		StateFile:         filepath.Join(dataDir, "state.json"),
		LogFile:           filepath.Join(dataDir, "takeoutrestore.log"),
	}
}

// LoadFromFile reads a YAML or TOML file over DefaultConfig. The format is
// chosen by extension; anything other than .toml is parsed as YAML.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Source == "" {
		return &ValidationError{Field: "source", Message: "source path is required"}
	}
	if c.Dest == "" {
		return &ValidationError{Field: "dest", Message: "destination path is required"}
	}
	if c.ExtractDir != "" && !c.ZipFolder {
		return &ValidationError{Field: "extract_dir", Message: "extract_dir can only be used with zip_folder"}
	}

	switch c.ConflictPolicy {
	case "":
		c.ConflictPolicy = types.ConflictPolicySkip
	case types.ConflictPolicySkip, types.ConflictPolicyRename, types.ConflictPolicyOverwrite:
	default:
		return &ValidationError{
			Field:   "conflict_policy",
			Message: fmt.Sprintf("unknown policy %q (want skip, rename or overwrite)", c.ConflictPolicy),
		}
	}

	if c.Jobs == 0 {
		c.Jobs = defaultJobs()
	}
	if c.Jobs < 1 {
		c.Jobs = 1
	}

	dataDir := DataDir()

	if c.LogFile == "" {
		c.LogFile = filepath.Join(dataDir, "takeoutrestore.log")
	}
	if c.StateFile == "" {
		c.StateFile = filepath.Join(dataDir, "state.json")
	}
	if c.WrapperPrefix == "" {
		c.WrapperPrefix = archive.DefaultWrapperPrefix
	}
	if c.ExiftoolPath == "" {
		c.ExiftoolPath = "exiftool"
	}
	if len(c.IncludeExtensions) == 0 {
		c.IncludeExtensions = DefaultExtensions()
	}

	return nil
}

// RunConfig is the subset of the configuration recorded in run history.
func (c *Config) RunConfig() types.RunConfig {
	return types.RunConfig{
		Source:         c.Source,
		Dest:           c.Dest,
		ZipFolder:      c.ZipFolder,
		ExtractDir:     c.ExtractDir,
		ConflictPolicy: c.ConflictPolicy,
		DryRun:         c.DryRun,
		Verify:         c.Verify,
		IgnoreState:    c.IgnoreState,
		Jobs:           c.Jobs,
	}
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
