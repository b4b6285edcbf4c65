package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

// ConflictResolver decides what happens when an output path already exists
// before the metadata writer runs. It is not safe for concurrent use; the
// pipeline resolves all tasks before any worker starts.
type ConflictResolver struct {
	policy   types.ConflictPolicy
	reserved map[string]bool
}

func NewConflictResolver(policy types.ConflictPolicy) *ConflictResolver {
	return &ConflictResolver{
		policy:   policy,
		reserved: make(map[string]bool),
	}
}

type Resolution struct {
	// Action is empty when there is no conflict; the copier fills it in.
	Action   types.RestoreAction
	DestPath string
	Skip     bool
}

func (c *ConflictResolver) Resolve(task *types.RestoreTask) Resolution {
	if !c.taken(task.DestPath) {
		c.reserved[task.DestPath] = true
		return Resolution{DestPath: task.DestPath}
	}

	switch c.policy {
	case types.ConflictPolicySkip:
		return Resolution{Action: types.ActionSkipped, Skip: true}

	case types.ConflictPolicyOverwrite:
		c.reserved[task.DestPath] = true
		return Resolution{Action: types.ActionOverwritten, DestPath: task.DestPath}

	case types.ConflictPolicyRename:
		newPath := c.generateUniqueName(task.DestPath)
		c.reserved[newPath] = true
		return Resolution{Action: types.ActionRenamed, DestPath: newPath}

	default:
		return Resolution{Action: types.ActionSkipped, Skip: true}
	}
}

func (c *ConflictResolver) taken(path string) bool {
	if c.reserved[path] {
		return true
	}
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func (c *ConflictResolver) generateUniqueName(path string) string {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)

	for i := 1; i < 10000; i++ {
		newName := fmt.Sprintf("%s_%d%s", base, i, ext)
		newPath := filepath.Join(dir, newName)
		if !c.taken(newPath) {
			return newPath
		}
	}

	return path
}
