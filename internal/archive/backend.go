package archive

// TransferItem describes one produced file queued for transfer into an
// archive location.
type TransferItem struct {
	Filename    string `json:"filename"`
	Fullname    string `json:"fullname"`
	ArchivePath string `json:"archive_path"`
	FileType    string `json:"file_type"`
	Compression string `json:"compression,omitempty"`
	Save        bool   `json:"save"`
	Compress    bool   `json:"compress"`
}

// Backend defines the contract for archive transfer strategies. Each backend
// is responsible for registering file metadata and moving produced files to
// its storage location.
type Backend interface {
	Name() string

	// Register records metadata for produced files of the given type.
	// Registration failures for individual files are reported in the
	// returned map; a nil entry means success.
	Register(fileType string, fullnames []string) map[string]error

	// Registered reports whether a file's metadata was already ingested.
	Registered(fileType, fullname string) bool

	// Store copies queued items into the archive. Per-file failures are
	// reported in the returned map; missing keys mean success.
	Store(items map[string]TransferItem) map[string]error
}

var (
	logWarnFn  = func(string) {}
	logErrorFn = func(string) {}
)

// SetLogFuncs configures optional logging hooks used by the backends.
// Callers can safely pass nil to disable a hook.
func SetLogFuncs(warnFn, errorFn func(string)) {
	if warnFn != nil {
		logWarnFn = warnFn
	} else {
		logWarnFn = func(string) {}
	}
	if errorFn != nil {
		logErrorFn = errorFn
	} else {
		logErrorFn = func(string) {}
	}
}
