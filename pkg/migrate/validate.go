package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	versionLayout       = "20060102150405"
	versionLayoutLength = len(versionLayout)

	annotationUp             = "-- +goose Up"
	annotationDown           = "-- +goose Down"
	annotationStatementBegin = "-- +goose StatementBegin"
	annotationStatementEnd   = "-- +goose StatementEnd"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// Migration is one SQL file found in a migrations directory.
type Migration struct {
	Version  int64
	Filename string
}

// ListMigrations returns the SQL migrations in dir ordered by version. It
// rejects malformed filenames and duplicate versions.
func ListMigrations(dir string) ([]Migration, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[int64]string{}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		name := e.Name()

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		version, _ := strconv.ParseInt(m[1], 10, 64)
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %d in %q and %q", version, prev, name)
		}
		seen[version] = name
		out = append(out, Migration{Version: version, Filename: name})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// ValidateDir checks filenames and goose annotations of every migration in dir.
// An empty directory is valid.
func ValidateDir(dir string) error {
	migrations, err := ListMigrations(dir)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		full := filepath.Join(dir, m.Filename)
		b, err := os.ReadFile(full)
		if err != nil {
			return fmt.Errorf("read file %q: %w", full, err)
		}
		if err := validateAnnotations(string(b)); err != nil {
			return fmt.Errorf("migration %q: %w", m.Filename, err)
		}
	}
	return nil
}

func validateAnnotations(txt string) error {
	up := strings.Index(txt, annotationUp)
	if up < 0 {
		return fmt.Errorf("missing %q", annotationUp)
	}
	down := strings.Index(txt, annotationDown)
	if down < 0 {
		return fmt.Errorf("missing %q", annotationDown)
	}
	if down < up {
		return fmt.Errorf("%q must precede %q", annotationUp, annotationDown)
	}

	open := false
	for i, line := range strings.Split(txt, "\n") {
		switch strings.TrimSpace(line) {
		case annotationStatementBegin:
			if open {
				return fmt.Errorf("line %d: nested StatementBegin", i+1)
			}
			open = true
		case annotationStatementEnd:
			if !open {
				return fmt.Errorf("line %d: StatementEnd without StatementBegin", i+1)
			}
			open = false
		case annotationDown:
			if open {
				return fmt.Errorf("line %d: Down section starts inside an open statement", i+1)
			}
		}
	}
	if open {
		return fmt.Errorf("unterminated StatementBegin")
	}
	return nil
}
