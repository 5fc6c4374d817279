package file

import (
	"os"
	"path/filepath"
	"sort"
)

// FindByExt lists the regular files directly inside dir whose extension is in
// exts, sorted by file name.
func FindByExt(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	ret := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if HasExt(entry.Name(), exts) {
			ret = append(ret, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Slice(ret, func(i, j int) bool {
		return filepath.Base(ret[i]) < filepath.Base(ret[j])
	})
	return ret, nil
}
