// Package pagesource turns uploaded document bytes into the ordered page
// stream the classifier consumes. Each source yields pages with their
// original page numbers; pages with under 50 characters of text are dropped
// here so no downstream tier has to reason about blanks.
package pagesource

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/specsift/specsift/internal/specdoc"
)

// minPageChars is the blank-page threshold at import.
const minPageChars = 50

// Source converts raw document bytes into a page-addressed Document.
type Source interface {
	Load(r io.Reader, filename string) (*specdoc.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".html": true,
	".htm":  true,
}

// ForFile returns the appropriate source for a filename.
func ForFile(filename string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFSource{}, nil
	case ".txt":
		return &TextSource{}, nil
	case ".html", ".htm":
		return &HTMLSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// newDocument assembles a Document from per-page text, dropping blanks but
// keeping original page numbers. rawPages is indexed by page number minus one.
func newDocument(title string, rawPages []string) *specdoc.Document {
	doc := &specdoc.Document{
		Title:      title,
		TotalPages: len(rawPages),
	}
	for i, text := range rawPages {
		text = strings.TrimSpace(text)
		if len(text) < minPageChars {
			continue
		}
		doc.Pages = append(doc.Pages, specdoc.Page{
			Number:    i + 1,
			Text:      text,
			CharCount: len(text),
		})
	}
	return doc
}
