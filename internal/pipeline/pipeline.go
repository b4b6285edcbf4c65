package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/On-Jun9/TakeoutRestore/internal/archive"
	"github.com/On-Jun9/TakeoutRestore/internal/config"
	"github.com/On-Jun9/TakeoutRestore/internal/copier"
	"github.com/On-Jun9/TakeoutRestore/internal/log"
	"github.com/On-Jun9/TakeoutRestore/internal/planner"
	"github.com/On-Jun9/TakeoutRestore/internal/policy"
	"github.com/On-Jun9/TakeoutRestore/internal/scanner"
	"github.com/On-Jun9/TakeoutRestore/internal/sidecar"
	"github.com/On-Jun9/TakeoutRestore/internal/state"
	"github.com/On-Jun9/TakeoutRestore/internal/verify"
	"github.com/On-Jun9/TakeoutRestore/internal/writer"
	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

// ErrFilesFailed is returned by Run when at least one file could not be restored.
var ErrFilesFailed = errors.New("one or more files failed")

const tempDirPattern = "takeoutrestore-"

type Pipeline struct {
	cfg      *config.Config
	merger   *archive.Merger
	scanner  *scanner.Scanner
	sidecars sidecar.Source
	planner  *planner.Planner
	conflict *policy.ConflictResolver
	tool     *writer.Tool
	copier   *copier.Copier
	verifier *verify.Verifier
	state    *state.State
	logger   *log.Logger
	history  *config.HistoryManager
}

func New(cfg *config.Config) (*Pipeline, error) {
	logger, err := log.New(cfg.LogFile, cfg.LogJSON, true)
	if err != nil {
		return nil, err
	}

	history, err := config.NewHistoryManager()
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to create history manager: %w", err)
	}

	st, err := state.Load(cfg.StateFile)
	if err != nil {
		logger.Close()
		return nil, err
	}
	if !cfg.DryRun {
		if err := st.Acquire(); err != nil {
			logger.Close()
			return nil, err
		}
	}

	tool := writer.NewTool(cfg.ExiftoolPath)

	var verifier *verify.Verifier
	var check copier.Verifier
	if cfg.Verify {
		verifier = verify.New(cfg.ExiftoolPath)
		check = verifier
	}

	return &Pipeline{
		cfg:      cfg,
		merger:   archive.New(cfg.WrapperPrefix),
		scanner:  scanner.New(cfg.IncludeExtensions),
		sidecars: sidecar.NewTakeoutSource(),
		planner:  planner.New(cfg.Dest),
		conflict: policy.NewConflictResolver(cfg.ConflictPolicy),
		tool:     tool,
		copier:   copier.New(cfg.Jobs, cfg.DryRun, writer.NewRegistry(tool), check),
		verifier: verifier,
		state:    st,
		logger:   logger,
		history:  history,
	}, nil
}

// Run merges the archives if configured, then restores every media file
// under the merged tree into cfg.Dest. The summary is returned even when
// the run fails.
func (p *Pipeline) Run(ctx context.Context) (*types.RunSummary, error) {
	summary := &types.RunSummary{StartTime: time.Now()}

	err := p.run(ctx, summary)

	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)

	if err == nil || errors.Is(err, ErrFilesFailed) {
		p.logger.Summary(*summary)
	} else {
		p.logger.Error("Run failed", err)
	}

	p.recordHistory(summary, err)

	return summary, err
}

func (p *Pipeline) run(ctx context.Context, summary *types.RunSummary) error {
	if !p.cfg.DryRun {
		if _, err := p.tool.LookPath(); err != nil {
			return fmt.Errorf("%w: %v", writer.ErrExifWriterFailed, err)
		}
	}

	root := p.cfg.Source
	if p.cfg.ZipFolder {
		mergeDir := p.cfg.ExtractDir
		if mergeDir == "" {
			tmp, err := os.MkdirTemp("", tempDirPattern)
			if err != nil {
				return fmt.Errorf("failed to create extraction directory: %w", err)
			}
			defer os.RemoveAll(tmp)
			mergeDir = tmp
		}

		p.logger.Info("Merging archives: '" + p.cfg.Source + "' -> '" + mergeDir + "'")
		stats, err := p.merger.MergeWithStats(p.cfg.Source, mergeDir)
		if err != nil {
			return err
		}
		summary.ArchivesMerged = stats.Archives
		summary.MergedFiles = stats.Written
		root = mergeDir
	}

	p.logger.Info("Starting scan: '" + root + "'")
	entries, err := p.scanner.Scan(root)
	if err != nil {
		return err
	}
	summary.ScannedFiles = len(entries)
	p.logger.Info("Found " + strconv.Itoa(len(entries)) + " files")

	var tasks []types.RestoreTask
	for _, entry := range entries {
		if !p.cfg.IgnoreState && p.state.IsProcessed(p.stateKey(entry), entry.Size) {
			summary.Skipped++
			continue
		}

		rec, ok, err := p.sidecars.Lookup(entry.Path)
		if err != nil {
			task := p.planner.Plan(entry, nil)
			task.Status = types.TaskStatusFailed
			task.Action = types.ActionFailed
			task.Error = err.Error()
			summary.Failed++
			p.logger.LogTask(task, 0)
			continue
		}

		var record *types.MetadataRecord
		if ok {
			record = &rec
		} else {
			summary.NoSidecar++
		}

		task := p.planner.Plan(entry, record)

		resolution := p.conflict.Resolve(&task)
		if resolution.Skip {
			task.Status = types.TaskStatusSkipped
			task.Action = resolution.Action
			summary.Skipped++
			p.logger.LogTask(task, 0)
			continue
		}

		task.DestPath = resolution.DestPath
		task.Action = resolution.Action
		tasks = append(tasks, task)
	}

	if len(tasks) > 0 {
		p.restore(ctx, tasks, summary)
	}

	if !p.cfg.DryRun {
		if err := p.state.Save(); err != nil {
			p.logger.Error("Failed to save state", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFilesFailed, summary.Failed, summary.ScannedFiles)
	}
	return nil
}

func (p *Pipeline) restore(ctx context.Context, tasks []types.RestoreTask, summary *types.RunSummary) {
	resultChan := make(chan copier.CopyResult, len(tasks))
	go p.copier.CopyAll(ctx, tasks, resultChan)

	processed := 0
	for result := range resultChan {
		processed++
		p.logger.Progress(processed, len(tasks), result.Task.Source.Name)

		switch result.Task.Action {
		case types.ActionWritten:
			summary.Written++
		case types.ActionCopied:
			summary.Copied++
		case types.ActionRenamed:
			summary.Renamed++
		case types.ActionOverwritten:
			summary.Overwritten++
		case types.ActionFailed:
			summary.Failed++
		}

		if result.Error == nil && !p.cfg.DryRun {
			p.state.MarkProcessed(p.stateKey(result.Task.Source), result.Task.Source.Size, result.Task.DestPath, string(result.Task.Action))
		}
		p.logger.LogTask(result.Task, 0)
	}
}

// stateKey identifies a file across runs. Merged files live in a fresh
// directory each time, so they are keyed by their place under the source.
func (p *Pipeline) stateKey(entry types.FileEntry) string {
	if p.cfg.ZipFolder {
		return filepath.Join(p.cfg.Source, entry.RelPath)
	}
	return entry.Path
}

func (p *Pipeline) recordHistory(summary *types.RunSummary, runErr error) {
	entry := types.RunHistoryEntry{
		ID:        uuid.NewString(),
		Summary:   *summary,
		Config:    p.cfg.RunConfig(),
		Status:    types.RunStatusSuccess,
		CreatedAt: summary.StartTime,
	}
	if runErr != nil {
		entry.Status = types.RunStatusFailed
		entry.Error = runErr.Error()
	}

	if err := p.history.AddEntry(entry); err != nil {
		p.logger.Error("Failed to save run history", err)
	}
}

func (p *Pipeline) Close() error {
	var errs []error
	if p.verifier != nil {
		errs = append(errs, p.verifier.Close())
	}
	errs = append(errs, p.state.Release(), p.logger.Close())
	return errors.Join(errs...)
}
