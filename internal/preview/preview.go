// Package preview serves a lightweight rendition of a cataloged file.
// Thumbnailing is out of scope; the current implementation is a stub that
// streams the original bytes for directly displayable types and declines
// everything else.
package preview

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bwan3150/resourcer/internal/catalog"
)

// ErrNotImplemented is returned for file types preview does not yet
// render (video, audio, gif, other). The caller maps this to HTTP 501.
var ErrNotImplemented = errors.New("preview: not implemented for this file type")

// previewable is the set of types served as-is, without transformation.
var previewable = map[catalog.FileType]bool{
	catalog.FileTypeImage: true,
	catalog.FileTypePDF:   true,
}

// Open returns a reader over file's preview bytes and the content type to
// report, or ErrNotImplemented if file's type has no preview rendition.
// The caller is responsible for closing the returned ReadCloser.
func Open(file *catalog.FileEntry) (io.ReadCloser, string, error) {
	if !previewable[file.FileType] {
		return nil, "", ErrNotImplemented
	}

	if file.CurrentPath == nil {
		return nil, "", catalog.ErrNotFound
	}

	f, err := os.Open(*file.CurrentPath)
	if err != nil {
		return nil, "", fmt.Errorf("%w: opening %s: %v", catalog.ErrIO, *file.CurrentPath, err)
	}

	return f, contentType(file), nil
}

func contentType(file *catalog.FileEntry) string {
	if file.FileType == catalog.FileTypePDF {
		return "application/pdf"
	}

	switch file.Extension {
	case "png":
		return "image/png"
	case "svg":
		return "image/svg+xml"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
