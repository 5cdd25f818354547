package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	want := Record{LastInputDir: "/a/b", LastExportDir: "/c/d"}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if got := string(data); got != "last_input_dir=/a/b\nlast_export_dir=/c/d\n" {
		t.Errorf("file contents = %q", got)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestSave_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := Save(path, Record{LastInputDir: "/very/long/old/path", LastExportDir: "/old"}); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, Record{LastInputDir: "/n"}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if got := string(data); got != "last_input_dir=/n\nlast_export_dir=\n" {
		t.Errorf("file contents = %q", got)
	}
}

func TestLoad_Missing(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != (Record{}) {
		t.Errorf("Load = %+v, want empty", got)
	}
}

func TestLoad_Tolerant(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := "garbage line\nlast_export_dir=/x=y/z \r\nunknown=1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Record{LastExportDir: "/x=y/z"}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestStore_MemFs(t *testing.T) {
	st := Store{Fs: afero.NewMemMapFs(), Path: "/cfg/config.txt"}
	if got, err := st.Load(); err != nil || got != (Record{}) {
		t.Fatalf("Load on empty fs = %+v, %v", got, err)
	}
	if err := st.Fs.MkdirAll("/cfg", 0o755); err != nil {
		t.Fatal(err)
	}
	want := Record{LastInputDir: "/videos", LastExportDir: "/frames"}
	if err := st.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}
