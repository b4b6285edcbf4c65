package policy

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/On-Jun9/TakeoutRestore/pkg/types"
)

// TestConflictResolver_NoConflict는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_NoConflict(t *testing.T) {
	tmpDir := t.TempDir()
	resolver := NewConflictResolver(types.ConflictPolicySkip)

	task := &types.RestoreTask{
		Source:   types.FileEntry{Name: "photo.jpg"},
		DestPath: filepath.Join(tmpDir, "photo.jpg"),
	}

	res := resolver.Resolve(task)

	if res.Skip {
		t.Error("should not skip when no conflict")
	}
	if res.Action != "" {
		t.Errorf("expected empty action, got %s", res.Action)
	}
	if res.DestPath != task.DestPath {
		t.Errorf("expected %s, got %s", task.DestPath, res.DestPath)
	}
}

// TestConflictResolver_Skip는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_Skip(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	resolver := NewConflictResolver(types.ConflictPolicySkip)

	task := &types.RestoreTask{
		Source:   types.FileEntry{Name: "photo.jpg"},
		DestPath: existingFile,
	}

	res := resolver.Resolve(task)

	if !res.Skip {
		t.Error("should skip on conflict with skip policy")
	}
	if res.Action != types.ActionSkipped {
		t.Errorf("expected skipped action, got %s", res.Action)
	}
}

// TestConflictResolver_Rename는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_Rename(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	resolver := NewConflictResolver(types.ConflictPolicyRename)

	task := &types.RestoreTask{
		Source:   types.FileEntry{Name: "photo.jpg"},
		DestPath: existingFile,
	}

	res := resolver.Resolve(task)

	if res.Skip {
		t.Error("should not skip on rename policy")
	}
	if res.Action != types.ActionRenamed {
		t.Errorf("expected renamed action, got %s", res.Action)
	}

	expected := filepath.Join(tmpDir, "photo_1.jpg")
	if res.DestPath != expected {
		t.Errorf("expected %s, got %s", expected, res.DestPath)
	}

	// 같은 실행 안에서 이미 예약된 이름은 다시 쓰이면 안 된다.
	second := resolver.Resolve(&types.RestoreTask{DestPath: existingFile})
	if second.DestPath != filepath.Join(tmpDir, "photo_2.jpg") {
		t.Errorf("expected photo_2.jpg, got %s", second.DestPath)
	}
}

// TestConflictResolver_ReservesPlannedPaths는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_ReservesPlannedPaths(t *testing.T) {
	// 디스크에 없더라도 같은 실행에서 먼저 계획된 경로는 충돌로 취급해야 한다.
	tmpDir := t.TempDir()
	dest := filepath.Join(tmpDir, "a.mp4")
	resolver := NewConflictResolver(types.ConflictPolicySkip)

	if res := resolver.Resolve(&types.RestoreTask{DestPath: dest}); res.Skip {
		t.Fatal("first task should not be skipped")
	}
	if res := resolver.Resolve(&types.RestoreTask{DestPath: dest}); !res.Skip {
		t.Fatal("second task with the same path should be skipped")
	}
}

// TestConflictResolver_Overwrite는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_Overwrite(t *testing.T) {
	// overwrite 정책은 같은 경로를 유지하고 overwrite 액션을 반환해야 한다.
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	resolver := NewConflictResolver(types.ConflictPolicyOverwrite)
	task := &types.RestoreTask{
		Source:   types.FileEntry{Name: "photo.jpg"},
		DestPath: existingFile,
	}

	res := resolver.Resolve(task)
	if res.Skip {
		t.Fatal("should not skip on overwrite policy")
	}
	if res.Action != types.ActionOverwritten {
		t.Fatalf("expected overwritten action, got %s", res.Action)
	}
	if res.DestPath != existingFile {
		t.Fatalf("expected same destination path, got %s", res.DestPath)
	}
}

// TestConflictResolver_DefaultPolicyFallsBackToSkip는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_DefaultPolicyFallsBackToSkip(t *testing.T) {
	// 알 수 없는 정책 값은 안전하게 skip으로 처리해야 한다.
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	resolver := NewConflictResolver(types.ConflictPolicy("unknown"))
	task := &types.RestoreTask{
		Source:   types.FileEntry{Name: "photo.jpg"},
		DestPath: existingFile,
	}

	res := resolver.Resolve(task)
	if !res.Skip {
		t.Fatal("expected skip for unknown policy")
	}
	if res.Action != types.ActionSkipped {
		t.Fatalf("expected skipped action, got %s", res.Action)
	}
}

// TestConflictResolver_GenerateUniqueName_ReturnsOriginalWhenExhausted는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_GenerateUniqueName_ReturnsOriginalWhenExhausted(t *testing.T) {
	// _1~_9999 후보가 모두 존재하면 generateUniqueName은 원본 경로를 반환해야 한다.
	tmpDir := t.TempDir()
	original := filepath.Join(tmpDir, "photo.jpg")

	for i := 1; i < 10000; i++ {
		candidate := filepath.Join(tmpDir, "photo_"+strconv.Itoa(i)+".jpg")
		if err := os.WriteFile(candidate, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create candidate file %d: %v", i, err)
		}
	}

	resolver := NewConflictResolver(types.ConflictPolicyRename)
	got := resolver.generateUniqueName(original)

	if got != original {
		t.Fatalf("expected original path when candidates exhausted, got %s", got)
	}
}
