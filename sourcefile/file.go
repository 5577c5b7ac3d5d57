package sourcefile

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Azhovan/reqargs"
	"github.com/Azhovan/reqargs/internal/normalize"
)

// Options configures file upload loading.
type Options struct {
	// TempDir is the parent of per-request upload directories. Empty uses os.TempDir.
	TempDir string

	// MaxFileSize rejects any single part above this size with reqargs.ErrBodyTooLarge.
	// Zero means no per-file limit beyond the request body limit.
	MaxFileSize int64
}

type fileLoader struct {
	opts Options
}

// New creates a file upload loader.
func New(opts Options) reqargs.Loader {
	return &fileLoader{opts: opts}
}

func (f *fileLoader) Location() reqargs.Location {
	return reqargs.InFile
}

// Extract materializes every file part. A key with one file yields *reqargs.File; a key with
// several files, or a "[]" suffix, yields []any of *reqargs.File.
func (f *fileLoader) Extract(req *reqargs.Request) (reqargs.RawMapping, error) {
	mediaType, _, err := req.MediaType()
	if err != nil || normalize.MediaKind(mediaType) != normalize.MediaMultipart {
		return reqargs.RawMapping{}, nil
	}

	form, err := req.MultipartForm()
	if err != nil {
		return nil, reqargs.NewTransportError(reqargs.InFile, err)
	}
	if form == nil || len(form.File) == 0 {
		return reqargs.RawMapping{}, nil
	}

	dir, err := req.TempDir(f.opts.TempDir)
	if err != nil {
		return nil, fmt.Errorf("prepare upload dir: %w", err)
	}

	// Sorted keys keep materialized file names stable across runs
	keys := make([]string, 0, len(form.File))
	for key := range form.File {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Parts sent as "docs" and "docs[]" share one key
	headers := make(map[string][]*multipart.FileHeader, len(keys))
	forced := make(map[string]bool)
	var names []string
	for _, raw := range keys {
		key, isList := normalize.ListKey(raw)
		if key == "" {
			continue
		}
		if _, seen := headers[key]; !seen {
			names = append(names, key)
		}
		headers[key] = append(headers[key], form.File[raw]...)
		if isList {
			forced[key] = true
		}
	}

	data := make(reqargs.RawMapping, len(names))
	for _, key := range names {
		files := make([]any, 0, len(headers[key]))
		for _, header := range headers[key] {
			file, err := f.materialize(dir, key, header)
			if err != nil {
				return nil, err
			}
			files = append(files, file)
		}

		if len(files) == 1 && !forced[key] {
			data[key] = files[0]
			continue
		}
		data[key] = files
	}
	return data, nil
}

func (f *fileLoader) materialize(dir, key string, header *multipart.FileHeader) (*reqargs.File, error) {
	if f.opts.MaxFileSize > 0 && header.Size > f.opts.MaxFileSize {
		return nil, &reqargs.TransportError{
			Location: reqargs.InFile,
			Field:    key,
			Err:      fmt.Errorf("%w: file %q exceeds %d bytes", reqargs.ErrBodyTooLarge, header.Filename, f.opts.MaxFileSize),
		}
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", key, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "upload-*"+safeExt(header.Filename))
	if err != nil {
		return nil, fmt.Errorf("create upload copy %s: %w", key, err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		return nil, fmt.Errorf("copy upload %s: %w", key, err)
	}

	name := header.Filename
	if name != "" {
		name = filepath.Base(name)
	}

	return &reqargs.File{
		Field:       key,
		Filename:    name,
		ContentType: header.Header.Get("Content-Type"),
		Size:        size,
		Path:        dst.Name(),
	}, nil
}

// safeExt returns the client extension when it is short and plain, so it can be kept on disk.
func safeExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	if strings.ContainsAny(ext[1:], `./\*?`) {
		return ""
	}
	return strings.ToLower(ext)
}
