package resume

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/jobboard-backend/internal/domain"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestParseAccepted(t *testing.T) {
	testCases := []struct {
		name     string
		fileName string
		content  []byte
		wantType string
		wantName string
	}{
		{"pdf", "cv.pdf", []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"), "application/pdf", "cv.pdf"},
		{"plain text", "cv.txt", []byte("Jane Doe\nGo developer\n"), "text/plain", "cv.txt"},
		{"path is stripped", "../../etc/cv.pdf", []byte("%PDF-1.7\n"), "application/pdf", "cv.pdf"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			file, err := Parse(tc.fileName, bytes.NewReader(tc.content), 1024)
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, file.ContentType)
			assert.Equal(t, tc.wantName, file.Name)
			assert.Equal(t, tc.content, file.Data)
		})
	}
}

func TestParseRejected(t *testing.T) {
	testCases := []struct {
		name     string
		fileName string
		content  []byte
		maxSize  int64
	}{
		{"empty", "cv.pdf", nil, 1024},
		{"too large", "cv.txt", []byte(strings.Repeat("a", 11)), 10},
		{"png", "cv.pdf", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 1024},
		{"html", "cv.txt", []byte("<html><body>hi</body></html>"), 1024},
		{"missing name", "", []byte("Jane Doe"), 1024},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.fileName, bytes.NewReader(tc.content), tc.maxSize)
			assert.ErrorIs(t, err, domain.ErrInvalidResume)
			assert.ErrorIs(t, err, domain.ErrJobBoard)
		})
	}
}

func TestParseReadError(t *testing.T) {
	_, err := Parse("cv.pdf", failingReader{}, 1024)
	assert.ErrorIs(t, err, domain.ErrInvalidResume)
}

func TestParseDefaultLimit(t *testing.T) {
	file, err := Parse("cv.txt", strings.NewReader("Jane Doe"), 0)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", file.ContentType)
}
