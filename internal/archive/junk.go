package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CollectJunk walks the job scratch directory and returns every regular file
// whose base name is not in notJunk. Symlinks are skipped: they point at
// files accounted for elsewhere.
func CollectJunk(root string, notJunk map[string]struct{}) ([]string, error) {
	var junk []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if _, ok := notJunk[filepath.Base(path)]; ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		junk = append(junk, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s for junk: %w", root, err)
	}
	return junk, nil
}

// WriteJunkTarball packages the given root-relative files into tarPath.
// It is the end-of-job catch-all for files no task claimed as input or
// output.
func WriteJunkTarball(tarPath, root string, files []string) error {
	out, err := os.Create(tarPath)
	if err != nil {
		return fmt.Errorf("create junk tarball: %w", err)
	}
	defer out.Close()

	tw := tar.NewWriter(out)
	for _, rel := range files {
		full := filepath.Join(root, rel)
		info, err := os.Stat(full)
		if err != nil {
			logWarnFn(fmt.Sprintf("junk tarball: skipping %s: %v", rel, err))
			continue
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("junk tarball header for %s: %w", rel, err)
		}
		hdr.Name = rel

		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("junk tarball write header: %w", err)
		}
		f, err := os.Open(full)
		if err != nil {
			return fmt.Errorf("junk tarball open %s: %w", rel, err)
		}
		if _, err := io.Copy(tw, f); err != nil {
			f.Close()
			return fmt.Errorf("junk tarball add %s: %w", rel, err)
		}
		f.Close()
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("finish junk tarball: %w", err)
	}
	return out.Close()
}
