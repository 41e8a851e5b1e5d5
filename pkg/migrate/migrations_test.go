package migrate_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var migrationNameRe = regexp.MustCompile(`^\d{14}_[a-z0-9_]+\.sql$`)

func TestMigrationFilesAreWellFormed(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no migration files found")
	}

	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if !migrationNameRe.MatchString(name) {
			t.Errorf("invalid migration filename %q", name)
			continue
		}
		version := name[:14]
		if prev, ok := seen[version]; ok {
			t.Errorf("duplicate version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		data, err := os.ReadFile(filepath.Join("migrations", name))
		if err != nil {
			t.Fatalf("read %q: %v", name, err)
		}
		content := string(data)
		if !strings.Contains(content, "-- +goose Up") {
			t.Errorf("migration %q missing goose Up marker", name)
		}
		if !strings.Contains(content, "-- +goose Down") {
			t.Errorf("migration %q missing goose Down marker", name)
		}
	}
}

func TestCartsMigrationMatchesSnapshotModel(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_carts.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("no carts migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE carts",
		"scope      text PRIMARY KEY",
		"items      jsonb NOT NULL DEFAULT '[]'::jsonb",
		"total      numeric(10,2) NOT NULL DEFAULT 0",
		"DROP TABLE IF EXISTS carts",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
