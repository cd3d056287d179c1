package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	gooseUp   = "-- +goose Up"
	gooseDown = "-- +goose Down"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

// File is one goose SQL migration on disk.
type File struct {
	Version string
	Name    string
	Path    string
}

func parseFilename(base string) (File, bool) {
	m := sqlFileRe.FindStringSubmatch(base)
	if m == nil {
		return File{}, false
	}
	return File{Version: m[1], Name: m[2]}, true
}

// ListDir returns the .sql migrations in dir ordered by version. Files that
// do not follow YYYYMMDDHHMMSS_name.sql are an error.
func ListDir(dir string) ([]File, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		f, ok := parseFilename(e.Name())
		if !ok {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", e.Name())
		}
		f.Path = filepath.Join(dir, e.Name())
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// ValidateDir checks that every migration has a unique version and name and
// declares its Up section before its Down section.
func ValidateDir(dir string) error {
	files, err := ListDir(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}

	versions := make(map[string]string, len(files))
	names := make(map[string]string, len(files))
	for _, f := range files {
		base := filepath.Base(f.Path)
		if prev, ok := versions[f.Version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", f.Version, prev, base)
		}
		versions[f.Version] = base
		if prev, ok := names[f.Name]; ok {
			return fmt.Errorf("duplicate migration name %q in %q and %q", f.Name, prev, base)
		}
		names[f.Name] = base

		if err := checkSections(f.Path); err != nil {
			return err
		}
	}
	return nil
}

func checkSections(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file %q: %w", path, err)
	}
	txt := string(b)
	up, down := strings.Index(txt, gooseUp), strings.Index(txt, gooseDown)
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing %q", filepath.Base(path), gooseUp)
	case down < 0:
		return fmt.Errorf("migration %q missing %q", filepath.Base(path), gooseDown)
	case down < up:
		return fmt.Errorf("migration %q declares %q before %q", filepath.Base(path), gooseDown, gooseUp)
	}
	return nil
}
