package pagesource

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/specsift/specsift/internal/specdoc"
)

// TextSource handles plain-text exports. Page breaks are form feeds or
// "--- Page N ---" marker lines, whichever the exporter used.
type TextSource struct{}

var pageMarkerRe = regexp.MustCompile(`(?m)^---\s*Page\s+(\d+)\s*---\s*$`)

// maxMarkerPage bounds the page number a marker may claim. Markers are user
// input and the claimed maximum sizes the page slice, so an absurd number is
// a malformed document, not a huge allocation.
const maxMarkerPage = 100000

func (s *TextSource) Load(r io.Reader, filename string) (*specdoc.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	text := string(data)
	title := strings.TrimSuffix(filename, ".txt")

	if pageMarkerRe.MatchString(text) {
		rawPages, err := splitMarkedPages(text)
		if err != nil {
			return nil, fmt.Errorf("page markers: %w", err)
		}
		return newDocument(title, rawPages), nil
	}
	return newDocument(title, strings.Split(text, "\f")), nil
}

// splitMarkedPages honors the page numbers in the markers, so a sparse
// export keeps its original numbering.
func splitMarkedPages(text string) ([]string, error) {
	matches := pageMarkerRe.FindAllStringSubmatchIndex(text, -1)

	maxPage := 0
	for _, m := range matches {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || n > maxMarkerPage {
			return nil, fmt.Errorf("marker page %s out of range", text[m[2]:m[3]])
		}
		if n > maxPage {
			maxPage = n
		}
	}
	pages := make([]string, maxPage)
	for i, m := range matches {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || n < 1 {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		pages[n-1] = text[m[1]:end]
	}
	return pages, nil
}
