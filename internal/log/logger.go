package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

type Logger struct {
	mu          sync.Mutex
	console     io.Writer
	file        *os.File
	logJSON     bool
	logText     bool
	interactive bool
}

// New opens logFilePath for appending. An empty path logs to the console only.
func New(logFilePath string, logJSON, logText bool) (*Logger, error) {
	l := &Logger{
		console:     os.Stdout,
		logJSON:     logJSON,
		logText:     logText,
		interactive: isTerminal(os.Stdout),
	}
	if logFilePath == "" {
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l.file = file

	return l, nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

type LogEntry struct {
	Timestamp time.Time           `json:"timestamp"`
	Level     string              `json:"level"`
	Message   string              `json:"message"`
	Source    string              `json:"source,omitempty"`
	Dest      string              `json:"dest,omitempty"`
	Action    types.RestoreAction `json:"action,omitempty"`
	Error     string              `json:"error,omitempty"`
	Duration  time.Duration       `json:"duration,omitempty"`
}

func (l *Logger) LogTask(task types.RestoreTask, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Message:   fmt.Sprintf("%s: %s -> %s", task.Action, task.Source.Name, task.DestPath),
		Source:    task.Source.Path,
		Dest:      task.DestPath,
		Action:    task.Action,
		Duration:  duration,
	}

	if task.Error != "" {
		entry.Level = "ERROR"
		entry.Error = task.Error
	}

	l.writeEntry(entry)
}

func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.writeEntry(LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Message:   msg,
	})
}

func (l *Logger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.writeEntry(LogEntry{
		Timestamp: time.Now(),
		Level:     "WARN",
		Message:   msg,
	})
}

func (l *Logger) Error(msg string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "ERROR",
		Message:   msg,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	l.writeEntry(entry)
}

func (l *Logger) writeEntry(entry LogEntry) {
	if l.file == nil {
		return
	}

	if l.logJSON {
		data, _ := json.Marshal(entry)
		l.file.Write(data)
		l.file.Write([]byte("\n"))
	}

	if l.logText {
		line := fmt.Sprintf("[%s] %s %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Level,
			entry.Message,
		)
		if entry.Error != "" {
			line = fmt.Sprintf("[%s] %s %s - Error: %s\n",
				entry.Timestamp.Format("2006-01-02 15:04:05"),
				entry.Level,
				entry.Message,
				entry.Error,
			)
		}
		l.file.WriteString(line)
	}
}

func (l *Logger) Summary(summary types.RunSummary) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("TakeoutRestore Summary")
	tw.AppendHeader(table.Row{"Metric", "Value"})

	rows := []struct {
		label string
		value int
	}{
		{"Archives merged", summary.ArchivesMerged},
		{"Merged files", summary.MergedFiles},
		{"Scanned files", summary.ScannedFiles},
		{"Written", summary.Written},
		{"Copied", summary.Copied},
		{"Skipped", summary.Skipped},
		{"Renamed", summary.Renamed},
		{"Overwritten", summary.Overwritten},
		{"Failed", summary.Failed},
		{"No sidecar", summary.NoSidecar},
	}
	for _, row := range rows {
		tw.AppendRow(table.Row{row.label, strconv.Itoa(row.value)})
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"Duration", summary.Duration.Round(time.Second).String()})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})

	fmt.Fprintln(l.console)
	fmt.Fprintln(l.console, tw.Render())
}

// Progress redraws a single status line. Non-terminal consoles get nothing.
func (l *Logger) Progress(current, total int, filename string) {
	if !l.interactive {
		return
	}
	fmt.Fprintf(l.console, "\r[%d/%d] %s", current, total, filename)
}
