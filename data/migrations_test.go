package data

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// Money columns keep full precision so Postgres replays match the in-memory store.
func TestMigrationsKeepNumericUnscaled(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "migrations", "*.up.sql"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations found")
	}

	scaled := regexp.MustCompile(`(?i)\b(NUMERIC|DECIMAL)\s*\(`)
	for _, file := range files {
		body, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		if loc := scaled.FindIndex(body); loc != nil {
			t.Errorf("%s: scale-limited numeric column at offset %d", filepath.Base(file), loc[0])
		}
	}
}
