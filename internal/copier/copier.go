package copier

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/On-Jun9/TakeoutRestore/internal/writer"
	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

// Verifier checks a freshly written output against its record.
type Verifier interface {
	Verify(path string, rec types.MetadataRecord) error
}

// Copier materializes restore tasks with a fixed number of workers. Tasks
// with a record and a registered writer go through the metadata writer;
// everything else is copied unchanged.
type Copier struct {
	workers  int
	dryRun   bool
	writers  *writer.Registry
	verifier Verifier
}

func New(workers int, dryRun bool, writers *writer.Registry, verifier Verifier) *Copier {
	if workers < 1 {
		workers = 1
	}
	return &Copier{
		workers:  workers,
		dryRun:   dryRun,
		writers:  writers,
		verifier: verifier,
	}
}

type CopyResult struct {
	Task  types.RestoreTask
	Error error
}

func (c *Copier) CopyAll(ctx context.Context, tasks []types.RestoreTask, resultChan chan<- CopyResult) {
	taskChan := make(chan types.RestoreTask, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				result := c.copyOne(ctx, task)
				resultChan <- result
			}
		}()
	}

	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)

	wg.Wait()
	close(resultChan)
}

func (c *Copier) writerFor(task types.RestoreTask) (writer.Writer, bool) {
	if task.Record == nil || c.writers == nil {
		return nil, false
	}
	return c.writers.ForExtension(task.Source.Extension)
}

func (c *Copier) copyOne(ctx context.Context, task types.RestoreTask) CopyResult {
	w, useWriter := c.writerFor(task)
	if task.Action == "" {
		if useWriter {
			task.Action = types.ActionWritten
		} else {
			task.Action = types.ActionCopied
		}
	}

	if c.dryRun {
		task.Status = types.TaskStatusCompleted
		return CopyResult{Task: task}
	}

	if err := ctx.Err(); err != nil {
		return failed(task, err)
	}

	if err := os.MkdirAll(filepath.Dir(task.DestPath), 0755); err != nil {
		return failed(task, err)
	}

	if task.Action == types.ActionOverwritten {
		if err := os.Remove(task.DestPath); err != nil && !os.IsNotExist(err) {
			return failed(task, err)
		}
	}

	if !useWriter {
		partPath := task.DestPath + ".part"
		if err := c.atomicCopy(task.Source.Path, partPath, task.DestPath); err != nil {
			os.Remove(partPath)
			return failed(task, err)
		}
		task.Status = types.TaskStatusCompleted
		return CopyResult{Task: task}
	}

	rec := *task.Record
	if err := w.Write(ctx, task.Source.Path, task.DestPath, rec); err != nil {
		os.Remove(task.DestPath)
		return failed(task, err)
	}

	takenAt := time.Unix(rec.TakenAt, 0)
	if err := os.Chtimes(task.DestPath, takenAt, takenAt); err != nil {
		return failed(task, err)
	}

	if c.verifier != nil {
		if err := c.verifier.Verify(task.DestPath, rec); err != nil {
			// A rejected output must not block the retry on the next run.
			os.Remove(task.DestPath)
			return failed(task, err)
		}
	}

	task.Status = types.TaskStatusCompleted
	return CopyResult{Task: task}
}

func failed(task types.RestoreTask, err error) CopyResult {
	task.Status = types.TaskStatusFailed
	task.Action = types.ActionFailed
	task.Error = err.Error()
	return CopyResult{Task: task, Error: err}
}

func (c *Copier) atomicCopy(src, partDest, finalDest string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(partDest)
	if err != nil {
		return err
	}

	_, err = io.Copy(dstFile, srcFile)
	if closeErr := dstFile.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	// Preserve modification time
	info, err := srcFile.Stat()
	if err == nil {
		os.Chtimes(partDest, info.ModTime(), info.ModTime())
	}

	return os.Rename(partDest, finalDest)
}
