package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
	// versionWidth matches the zero-padded prefix of the files in migrations/
	versionWidth = 6
)

// Pair is one migration as an up and down file
type Pair struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// Base returns the shared file name prefix, e.g. "000002_add_expense_notes"
func (p Pair) Base() string {
	return fmt.Sprintf("%0*d_%s", versionWidth, p.Version, p.Name)
}

// List returns the migrations in dir ordered by version. A missing directory
// is an empty list.
func List(dir string) ([]Pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var pairs []Pair
	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), upSuffix)
		if entry.IsDir() || !ok {
			continue
		}
		rawVersion, name, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		version, err := strconv.ParseUint(rawVersion, 10, 32)
		if err != nil {
			continue
		}
		pairs = append(pairs, Pair{
			Version:  uint(version),
			Name:     name,
			UpPath:   filepath.Join(dir, base+upSuffix),
			DownPath: filepath.Join(dir, base+downSuffix),
		})
	}
	slices.SortFunc(pairs, func(a, b Pair) int { return int(a.Version) - int(b.Version) })
	return pairs, nil
}

// Scaffold writes an empty up/down pair numbered after the highest existing
// version in dir.
func Scaffold(dir, name string) (*Pair, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := List(dir)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	p := Pair{Version: next, Name: slug}
	p.UpPath = filepath.Join(dir, p.Base()+upSuffix)
	p.DownPath = filepath.Join(dir, p.Base()+downSuffix)

	if err := writeNew(p.UpPath, fmt.Sprintf("-- %s\n", name)); err != nil {
		return nil, err
	}
	if err := writeNew(p.DownPath, fmt.Sprintf("-- rollback: %s\n", name)); err != nil {
		_ = os.Remove(p.UpPath)
		return nil, err
	}
	return &p, nil
}

func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// slugify lowercases name and joins its alphanumeric runs with underscores
func slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}
