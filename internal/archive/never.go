package archive

import "sync"

// NeverBackend records registrations but transfers nothing. It is the default
// when a job runs without an archive.
type NeverBackend struct {
	mu       sync.Mutex
	ingested map[string]struct{}
}

func (b *NeverBackend) Name() string { return "never" }

func (b *NeverBackend) Register(fileType string, fullnames []string) map[string]error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ingested == nil {
		b.ingested = make(map[string]struct{})
	}
	res := make(map[string]error, len(fullnames))
	for _, name := range fullnames {
		b.ingested[fileType+":"+name] = struct{}{}
		res[name] = nil
	}
	return res
}

func (b *NeverBackend) Registered(fileType, fullname string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.ingested[fileType+":"+fullname]
	return ok
}

func (b *NeverBackend) Store(items map[string]TransferItem) map[string]error {
	return nil
}
