package planner

import (
	"path/filepath"

	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

// Planner maps source entries onto the output tree, keeping the layout
// relative to the scan root.
type Planner struct {
	destRoot string
}

func New(destRoot string) *Planner {
	return &Planner{destRoot: destRoot}
}

func (p *Planner) Plan(entry types.FileEntry, rec *types.MetadataRecord) types.RestoreTask {
	rel := entry.RelPath
	if rel == "" {
		rel = entry.Name
	}

	return types.RestoreTask{
		Source:   entry,
		Record:   rec,
		DestPath: filepath.Join(p.destRoot, rel),
		Status:   types.TaskStatusPending,
	}
}
