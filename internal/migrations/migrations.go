package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// File is one schema script. Scripts are idempotent and run in name order.
type File struct {
	Name string
	SQL  string
}

// Load returns the scripts for a storage driver ("postgres" or "sqlite")
func Load(driver string) ([]File, error) {
	entries, err := fs.ReadDir(files, driver)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %q: %w", driver, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]File, 0, len(names))
	for _, name := range names {
		b, err := files.ReadFile(path.Join(driver, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, File{Name: name, SQL: string(b)})
	}
	return out, nil
}
