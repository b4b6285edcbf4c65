package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/On-Jun9/TakeoutRestore/internal/archive"
	"github.com/On-Jun9/TakeoutRestore/internal/config"
	"github.com/On-Jun9/TakeoutRestore/internal/pipeline"
	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

var (
	appVersion     = "0.1.0"
	cfgFile        string
	zipFolder      bool
	extractDir     string
	wrapperPrefix  string
	mergePrefix    string
	includeExt     []string
	jobs           int
	conflictPolicy string
	exiftoolPath   string
	stateFile      string
	logFile        string
	logJSON        bool
	dryRun         bool
	verifyOutput   bool
	ignoreState    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "takeoutrestore",
	Short: "Restore Google Takeout metadata into photos and videos",
	Long: `TakeoutRestore merges split Google Takeout archives and writes the capture
time, location and description from each JSON sidecar back into the media
file using exiftool.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run <takeout_folder> <output_folder>",
	Short: "Restore metadata from a Takeout folder into an output folder",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runPipeline,
}

var mergeCmd = &cobra.Command{
	Use:   "merge <zip_folder> <dest>",
	Short: "Merge split Takeout archives into one directory tree",
	Args:  cobra.ExactArgs(2),
	RunE:  runMerge,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVersion)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(versionCmd)

	runCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path (.yaml or .toml)")
	runCmd.Flags().BoolVar(&zipFolder, "zip-folder", false, "treat takeout_folder as a directory of split zip files to merge first")
	runCmd.Flags().StringVar(&extractDir, "extract-dir", "", "directory to merge archives into (only with --zip-folder; default is a temporary directory)")
	runCmd.Flags().StringVar(&wrapperPrefix, "wrapper-prefix", "", "top-level archive directory prefix to strip")
	runCmd.Flags().StringSliceVarP(&includeExt, "include-ext", "e", nil, "file extensions to include")
	runCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "number of concurrent workers (0=auto)")
	runCmd.Flags().StringVar(&conflictPolicy, "conflict", "", "policy for existing outputs: skip, rename, overwrite")
	runCmd.Flags().StringVar(&exiftoolPath, "exiftool", "", "exiftool binary")
	runCmd.Flags().StringVar(&stateFile, "state-file", "", "state file for resume")
	runCmd.Flags().StringVar(&logFile, "log-file", "", "log file path")
	runCmd.Flags().BoolVar(&logJSON, "log-json", false, "output JSON logs")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan without writing outputs")
	runCmd.Flags().BoolVar(&verifyOutput, "verify", false, "read metadata back after writing")
	runCmd.Flags().BoolVar(&ignoreState, "ignore-state", false, "process files already recorded in the state file")

	mergeCmd.Flags().StringVar(&mergePrefix, "wrapper-prefix", archive.DefaultWrapperPrefix, "top-level archive directory prefix to strip")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	_, err = p.Run(cmd.Context())
	return err
}

// loadConfig layers the positional arguments and set flags over the config
// file (or the defaults) and validates the result.
func loadConfig(args []string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if len(args) > 0 {
		cfg.Source = args[0]
	}
	if len(args) > 1 {
		cfg.Dest = args[1]
	}
	if zipFolder {
		cfg.ZipFolder = true
	}
	if extractDir != "" {
		cfg.ExtractDir = extractDir
	}
	if wrapperPrefix != "" {
		cfg.WrapperPrefix = wrapperPrefix
	}
	if len(includeExt) > 0 {
		cfg.IncludeExtensions = includeExt
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}
	if conflictPolicy != "" {
		cfg.ConflictPolicy = types.ConflictPolicy(conflictPolicy)
	}
	if exiftoolPath != "" {
		cfg.ExiftoolPath = exiftoolPath
	}
	if stateFile != "" {
		cfg.StateFile = stateFile
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if logJSON {
		cfg.LogJSON = true
	}
	if dryRun {
		cfg.DryRun = true
	}
	if verifyOutput {
		cfg.Verify = true
	}
	if ignoreState {
		cfg.IgnoreState = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	stats, err := archive.New(mergePrefix).MergeWithStats(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Merged %d archive(s) into %s: %d written, %d duplicate(s) skipped\n",
		stats.Archives, args[1], stats.Written, stats.Skipped)
	return nil
}
