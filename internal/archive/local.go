package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// LocalBackend copies produced files into a directory tree on the same
// filesystem, mirroring each item's archive-relative path.
type LocalBackend struct {
	root string

	mu       sync.Mutex
	ingested map[string]struct{}
}

func NewLocalBackend(root string) *LocalBackend {
	return &LocalBackend{root: root, ingested: make(map[string]struct{})}
}

func (b *LocalBackend) Name() string { return "local" }

func (b *LocalBackend) Register(fileType string, fullnames []string) map[string]error {
	res := make(map[string]error, len(fullnames))
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, name := range fullnames {
		if _, err := os.Stat(name); err != nil {
			res[name] = fmt.Errorf("register %s: %w", fileType, err)
			continue
		}
		b.ingested[fileType+":"+name] = struct{}{}
		res[name] = nil
	}
	return res
}

func (b *LocalBackend) Registered(fileType, fullname string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.ingested[fileType+":"+fullname]
	return ok
}

func (b *LocalBackend) Store(items map[string]TransferItem) map[string]error {
	problems := make(map[string]error)
	for key, item := range items {
		if !item.Save {
			continue
		}
		dst := filepath.Join(b.root, item.ArchivePath, filepath.Base(item.Fullname))
		if err := copyFile(item.Fullname, dst); err != nil {
			problems[key] = err
			logWarnFn(fmt.Sprintf("failed to copy %s to archive: %v", key, err))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
