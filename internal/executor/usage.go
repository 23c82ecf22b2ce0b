package executor

import (
	"io/fs"
	"path/filepath"
)

// diskUsage sums regular-file sizes under path. Walk errors are skipped so a
// file deleted mid-walk cannot fail a task that otherwise succeeded.
func diskUsage(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, ierr := d.Info(); ierr == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
