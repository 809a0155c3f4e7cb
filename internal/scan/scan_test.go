package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCSVFiles_SortedAndFiltered(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "b", "108_20.csv"))
	touch(t, filepath.Join(root, "a", "98_20M.CSV"))
	touch(t, filepath.Join(root, "a", "notes.txt"))
	touch(t, filepath.Join(root, "Samples", "0"))

	got, err := CSVFiles(root, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{
		filepath.Join(root, "a", "98_20M.CSV"),
		filepath.Join(root, "b", "108_20.csv"),
	}
	if len(got) != len(want) {
		t.Fatalf("期望 %d 个 CSV，实际 %d：%v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("第 %d 个：期望 %q，实际 %q", i, want[i], got[i])
		}
	}
}

func TestCSVFiles_ExcludeDirs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "old", "x.csv"))
	touch(t, filepath.Join(root, "oldish", "y.csv"))

	got, err := CSVFiles(root, []string{"old"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 || got[0] != filepath.Join(root, "oldish", "y.csv") {
		t.Fatalf("前缀相同的兄弟目录不应被排除：%v", got)
	}
}

func TestCSVFiles_MissingRoot(t *testing.T) {
	if _, err := CSVFiles(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Fatalf("期望 root 不存在时报错")
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
