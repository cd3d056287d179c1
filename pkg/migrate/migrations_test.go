package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestEngagementMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_engagements")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS engagements",
		"CREATE TABLE IF NOT EXISTS completed_engagements",
		"CREATE TABLE IF NOT EXISTS archived_engagements",
		"ux_engagements_volunteer_activity",
		"ux_completed_engagements_volunteer_activity",
		"CHECK (state IN ('pending', 'accepted', 'rejected'))",
		"DROP TABLE IF EXISTS engagements",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestNotificationMigrationKeysOnSourceEvent(t *testing.T) {
	content := readMigration(t, "create_notifications")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS volunteer_notifications",
		"CREATE TABLE IF NOT EXISTS admin_notifications",
		"ON volunteer_notifications (source_event_id)",
		"ON admin_notifications (source_event_id)",
		"DROP TABLE IF EXISTS admin_notifications",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationContainsPartialIndex(t *testing.T) {
	content := readMigration(t, "create_outbox")
	if !strings.Contains(content, "WHERE published_at IS NULL") {
		t.Fatal("expected partial index on unpublished outbox events")
	}
	if !strings.Contains(content, "ux_outbox_dlq_event_id") {
		t.Fatal("expected unique dlq event index")
	}
}

func TestReviewMigrationConstrainsRating(t *testing.T) {
	content := readMigration(t, "create_reviews")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS reviews",
		"CREATE TABLE IF NOT EXISTS review_replies",
		"CHECK (rating BETWEEN 1 AND 5)",
		"REFERENCES reviews(id) ON DELETE CASCADE",
		"ON reviews (activity_id, created_at, id)",
		"DROP TABLE IF EXISTS review_replies",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProfileAndRecipientMigrationsAddColumns(t *testing.T) {
	profile := readMigration(t, "add_user_profile")
	for _, sub := range []string{"interests", "strengths", "prior_experience", "DROP COLUMN IF EXISTS interests"} {
		if !strings.Contains(profile, sub) {
			t.Errorf("profile migration missing %q", sub)
		}
	}
	recipient := readMigration(t, "add_chat_recipient")
	if !strings.Contains(recipient, "ADD COLUMN IF NOT EXISTS recipient_id uuid") {
		t.Fatal("expected recipient column on chat messages")
	}
}

func TestValidateDirAcceptsRepositoryMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir returned error: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Volunteer Hours Table")
	if err != nil {
		t.Fatalf("CreateSQLMigration returned error: %v", err)
	}
	if !strings.HasSuffix(path, "_add_volunteer_hours_table.sql") {
		t.Fatalf("unexpected path %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration failed validation: %v", err)
	}
}

func TestCreateSQLMigrationRejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()
	if _, err := migrate.CreateSQLMigration(dir, "add_volunteer_hours"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "Add Volunteer Hours"); err == nil {
		t.Fatal("expected duplicate migration name to be rejected")
	}
	if _, err := migrate.CreateSQLMigration(dir, "  "); err == nil {
		t.Fatal("expected blank name to be rejected")
	}
}

func TestValidateDirRejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Up\n-- +goose Down\n")
	for _, name := range []string{"20260301090000_add_hours.sql", "20260302090000_add_hours.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestAutoMigrateSQLiteCreatesSchema(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:automigrate?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migrate.AutoMigrateSQLite(conn); err != nil {
		t.Fatalf("AutoMigrateSQLite returned error: %v", err)
	}
	for _, table := range []string{"engagements", "completed_engagements", "archived_engagements", "volunteer_notifications", "admin_notifications", "outbox_events", "outbox_dlq"} {
		if !conn.Migrator().HasTable(table) {
			t.Errorf("expected table %s", table)
		}
	}
}

func TestParseCommand(t *testing.T) {
	for _, raw := range []string{"up", "down", "status", "version"} {
		cmd, err := migrate.ParseCommand(raw)
		if err != nil || string(cmd) != raw {
			t.Fatalf("ParseCommand(%q) = %q, %v", raw, cmd, err)
		}
	}
	if _, err := migrate.ParseCommand("redo"); err == nil {
		t.Fatal("expected unsupported command to be rejected")
	}
}

func TestApplyRequiresConnection(t *testing.T) {
	if err := migrate.Apply(context.Background(), nil, migrate.DefaultDir, migrate.CommandUp, ""); err == nil {
		t.Fatal("expected nil db to be rejected")
	}
}

func TestListDirOrdersByVersion(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Up\n-- +goose Down\n")
	for _, name := range []string{"20260302090000_add_hours.sql", "20260301090000_add_skills.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	files, err := migrate.ListDir(dir)
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	if len(files) != 2 || files[0].Name != "add_skills" || files[1].Version != "20260302090000" {
		t.Fatalf("unexpected files %+v", files)
	}
}

func TestValidateDirRejectsDownBeforeUp(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20260301090000_add_hours.sql"), []byte("-- +goose Down\n-- +goose Up\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected section order error")
	}
}
