package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the largest accepted upload
const MaxImageSize = 5 << 20

const (
	MsgUnsupportedType = "Unsupported image type. Use JPEG, PNG, WEBP or GIF."
	MsgTooLarge        = "Image must be 5MB or smaller."
)

// ErrForeignObject is returned when asked to delete a URL that does not
// belong to the store
var ErrForeignObject = errors.New("object does not belong to this store")

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// File is an image selected for upload. Size is authoritative when set,
// otherwise len(Data) is used.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Stored locates an uploaded object
type Stored struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Validation is the outcome of checking a file before upload
type Validation struct {
	Valid bool
	Error string
}

// Store uploads and removes product images
type Store interface {
	Store(ctx context.Context, file File, folder string) (Stored, error)
	Delete(ctx context.Context, urlOrKey string) error
	Validate(file File) Validation
}

// Validate checks type and size. The declared type must be an allowed image
// type and, when content is present, the sniffed type must agree.
func Validate(f File) Validation {
	if !allowedTypes[f.Type()] {
		return Validation{Error: MsgUnsupportedType}
	}
	if len(f.Data) > 0 && !allowedTypes[sniff(f.Data)] {
		return Validation{Error: MsgUnsupportedType}
	}
	if f.size() > MaxImageSize {
		return Validation{Error: MsgTooLarge}
	}
	return Validation{Valid: true}
}

// Type is the declared content type without parameters, or the sniffed
// type when none was declared
func (f File) Type() string {
	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" && len(f.Data) > 0 {
		ct = sniff(f.Data)
	}
	return ct
}

// Extension picks the object key extension from the content type, then the file name
func (f File) Extension() string {
	if m := mimetype.Lookup(f.Type()); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return strings.ToLower(filepath.Ext(f.Name))
}

func (f File) size() int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Data))
}

func sniff(data []byte) string {
	ct := mimetype.Detect(data).String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// ReadFile reads an upload from r. At most one byte past MaxImageSize is
// kept so oversized files still fail validation without being buffered whole.
func ReadFile(name, contentType string, size int64, r io.Reader) (File, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return File{}, fmt.Errorf("failed to read image: %w", err)
	}
	if size <= 0 {
		size = int64(len(data))
	}
	return File{Name: name, ContentType: contentType, Size: size, Data: data}, nil
}

// OpenFile loads an image from disk for the admin console
func OpenFile(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return File{}, fmt.Errorf("failed to stat image: %w", err)
	}
	return ReadFile(filepath.Base(path), "", info.Size(), fh)
}

// Preview renders the file as a data URI
func Preview(f File) string {
	return "data:" + f.Type() + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// IsDataURI reports whether s is an embedded preview rather than a real link
func IsDataURI(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "data:")
}
