package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMigrations_FallsBackToEmbedded(t *testing.T) {
	files, err := loadMigrations(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 || files[0].name != "001_init.sql" {
		t.Fatalf("files = %v", files)
	}
}

func TestLoadMigrations_DirectoryOrder(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"002_b.sql": "SELECT 2;",
		"001_a.sql": "SELECT 1;",
		"notes.txt": "ignored",
		"010_c.sql": "SELECT 10;",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := loadMigrations(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.name)
	}
	want := []string{"001_a.sql", "002_b.sql", "010_c.sql"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}
