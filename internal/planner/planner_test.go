package planner

import (
	"path/filepath"
	"testing"

	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

// TestPlanner_Plan_MirrorsRelativePath는 테스트 코드 동작을 검증하거나 보조합니다.
func TestPlanner_Plan_MirrorsRelativePath(t *testing.T) {
	// 출력 경로는 스캔 루트 기준 상대 경로를 그대로 유지해야 한다.
	p := New("/dest")

	rec := &types.MetadataRecord{TakenAt: 1}
	entry := types.FileEntry{
		Path:    "/merged/Google Photos/Trip/photo.jpg",
		RelPath: filepath.Join("Google Photos", "Trip", "photo.jpg"),
		Name:    "photo.jpg",
	}

	task := p.Plan(entry, rec)

	expected := filepath.Join("/dest", "Google Photos", "Trip", "photo.jpg")
	if task.DestPath != expected {
		t.Errorf("expected %s, got %s", expected, task.DestPath)
	}
	if task.Record != rec {
		t.Error("expected record to be attached to the task")
	}
	if task.Status != types.TaskStatusPending {
		t.Errorf("expected pending status, got %s", task.Status)
	}
}

// TestPlanner_Plan_FallsBackToName는 테스트 코드 동작을 검증하거나 보조합니다.
func TestPlanner_Plan_FallsBackToName(t *testing.T) {
	p := New("/dest")

	task := p.Plan(types.FileEntry{Path: "/x/a.mp4", Name: "a.mp4"}, nil)

	if task.DestPath != filepath.Join("/dest", "a.mp4") {
		t.Errorf("unexpected dest path %s", task.DestPath)
	}
	if task.Record != nil {
		t.Error("expected nil record")
	}
}
