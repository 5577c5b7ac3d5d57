package reqargs

import (
	"io"
	"os"
)

// File is an uploaded file part materialized on disk for the lifetime of its Request.
type File struct {
	Field       string // Form field the part was sent under
	Filename    string // Client-supplied file name (may be empty)
	ContentType string
	Size        int64
	Path        string // Materialized copy, removed when the Request is closed
}

// Open opens the materialized copy for reading.
func (f *File) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// NameOr returns the client file name, or fallback when the client sent none.
func (f *File) NameOr(fallback string) string {
	if f.Filename != "" {
		return f.Filename
	}
	return fallback
}
