// Package ingest turns dropped or pasted files into decoded images. It owns
// the accepted-type policy (JPEG, PNG, GIF and ICO) so that the renderer only
// ever sees a decoded image.Image.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"
)

// Errors returned by Decode and Load.
var (
	ErrUnsupportedType = errors.New("ingest: unsupported file type")
	ErrEmpty           = errors.New("ingest: empty file")
	ErrMalformedICO    = errors.New("ingest: malformed ICO")
)

// AcceptedTypes lists the MIME types a drop may carry.
var AcceptedTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/x-icon",
}

// Accepted reports whether mimeType is one of AcceptedTypes. Parameters
// such as "; charset=" are ignored.
func Accepted(mimeType string) bool {
	return slices.Contains(AcceptedTypes, normalize(mimeType))
}

func normalize(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// DetectType sniffs the MIME type of data from its first bytes.
func DetectType(data []byte) string {
	return normalize(http.DetectContentType(data))
}

// TypeByName returns the MIME type implied by a file name's extension, or
// "" when the extension is not recognised.
func TypeByName(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".jpe":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".ico":
		return "image/x-icon"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	}
	return ""
}

// Image is a decoded file.
type Image struct {
	Image  image.Image
	Type   string // MIME type the file was accepted as
	Format string // decoder name, e.g. "png"
	Width  int
	Height int
}

// Decode validates and decodes data. A non-empty declared type is checked
// against AcceptedTypes first; without one the type is sniffed from the
// content.
func Decode(data []byte, declared string) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	typ := normalize(declared)
	if typ == "" {
		typ = DetectType(data)
	}
	if !Accepted(typ) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, ErrMalformedICO) {
			return nil, err
		}
		return nil, fmt.Errorf("decode %s: %w", typ, err)
	}
	b := img.Bounds()
	return &Image{Image: img, Type: typ, Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

// ReadFile reads and decodes name from fsys. The declared type comes from
// the file extension.
func ReadFile(fsys fs.FS, name string) (*Image, error) {
	typ := TypeByName(name)
	if typ != "" && !Accepted(typ) {
		return nil, fmt.Errorf("%s: %w: %s", name, ErrUnsupportedType, typ)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	img, err := Decode(data, typ)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return img, nil
}

// Result is delivered by Load once a file has been decoded or has failed.
type Result struct {
	Name  string
	Image *Image
	Err   error
}

// Load decodes name in the background. The returned channel receives
// exactly one Result and is then closed. If ctx ends first the channel is
// closed without a value.
func Load(ctx context.Context, fsys fs.FS, name string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		img, err := ReadFile(fsys, name)
		if ctx.Err() != nil {
			return
		}
		ch <- Result{Name: name, Image: img, Err: err}
	}()
	return ch
}
