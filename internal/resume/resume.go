// internal/resume/resume.go
package resume

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Annany2002/jobboard-backend/internal/domain"
)

// DefaultMaxSize is the largest resume accepted when no limit is configured.
const DefaultMaxSize int64 = 5 << 20

// AllowedTypes are the accepted resume media types.
var AllowedTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
}

// File is an accepted resume upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Parse reads an uploaded resume and checks its size and detected type.
// The declared file name only contributes the stored name; the type comes
// from the content.
func Parse(name string, r io.Reader, maxSize int64) (*File, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	name = strings.TrimSpace(filepath.Base(filepath.Clean("/" + name)))
	if name == "" || name == "/" || name == "." {
		return nil, fmt.Errorf("%w: file name is missing", domain.ErrInvalidResume)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", domain.ErrInvalidResume, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: the submitted file is empty", domain.ErrInvalidResume)
	}
	if n > maxSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidResume, maxSize)
	}

	detected := mimetype.Detect(buf.Bytes())
	contentType, ok := allowed(detected)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %s", domain.ErrInvalidResume, detected.String())
	}

	return &File{Name: name, ContentType: contentType, Data: buf.Bytes()}, nil
}

func allowed(detected *mimetype.MIME) (string, bool) {
	for _, t := range AllowedTypes {
		if detected.Is(t) {
			return t, true
		}
	}
	return "", false
}
