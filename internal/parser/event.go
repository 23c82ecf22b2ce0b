package parser

// Event is one provenance record emitted by a wrapped executable, one JSON
// object per line. Executables that know nothing about provenance simply
// never write the file and the runner falls back to the declared outputs.
type Event struct {
	Type     string `json:"type"` // "input", "output" or "status"
	Filename string `json:"filename,omitempty"`
	FileType string `json:"file_type,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Provenance is the aggregate of one task's event stream.
type Provenance struct {
	Inputs  []string
	Outputs []string
	Notes   []string
}
