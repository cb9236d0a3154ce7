package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/warebound/fulfillment-backend/pkg/migrate"
)

func TestPickPackMigrationEnforcesUniqueness(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_pick_packs.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no pick pack migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS pick_packs",
		"order_id UUID NOT NULL UNIQUE",
		"pack_number TEXT NOT NULL UNIQUE",
		"version BIGINT NOT NULL DEFAULT 0",
		"CREATE TABLE IF NOT EXISTS pick_pack_items",
		"FOREIGN KEY (pick_pack_id) REFERENCES pick_packs(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS pick_packs",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsBundledMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
