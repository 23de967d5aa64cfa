package classify

import (
	"strings"
	"unicode/utf8"

	"github.com/specsift/specsift/internal/specdoc"
)

// formatSampleSize is how many pages format detection looks at. Vendors are
// consistent within a document, so the front of the book is enough.
const formatSampleSize = 50

// headerFooterChars bounds the header and footer windows scanned for section
// notation. PDF extraction sometimes emits the printed footer at the start of
// the text, so both ends are always checked.
const headerFooterChars = 600

// formatPriority breaks nonzero ties deterministically. The order is
// arbitrary but fixed: compact page notation wins over spaced, page-number
// styles win over SECTION-header styles.
var formatPriority = []specdoc.SpecFormat{
	specdoc.FormatCompactPage,
	specdoc.FormatSpacedPage,
	specdoc.FormatSectionCompact,
	specdoc.FormatSectionSpaced,
}

// clipHead truncates text to at most limit bytes without splitting a UTF-8
// sequence at the cut.
func clipHead(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

// clipTail keeps the last at-most-limit bytes of text, advancing past any
// partial UTF-8 sequence at the cut.
func clipTail(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	start := len(text) - limit
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	return text[start:]
}

func headerRegion(text string) string {
	return strings.ToUpper(clipHead(text, headerFooterChars))
}

func footerRegion(text string) string {
	return strings.ToUpper(clipTail(text, headerFooterChars))
}

// DetectFormat samples the first pages of a document and returns the dominant
// header/footer section notation, or FormatNone when no family matches at
// all. Each page counts at most once per family.
func DetectFormat(pages []specdoc.Page) specdoc.SpecFormat {
	sample := pages
	if len(sample) > formatSampleSize {
		sample = sample[:formatSampleSize]
	}

	counts := make(map[specdoc.SpecFormat]int)
	for i := range sample {
		text := sample[i].Text
		if text == "" {
			continue
		}
		region := headerRegion(text) + "\n" + footerRegion(text)
		for _, format := range formatPriority {
			if contentPatterns[format].MatchString(region) {
				counts[format]++
			}
		}
	}

	best := specdoc.FormatNone
	bestCount := 0
	for _, format := range formatPriority {
		if counts[format] > bestCount {
			best = format
			bestCount = counts[format]
		}
	}
	return best
}
