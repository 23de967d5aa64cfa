// Package oracle talks to the external section-boundary service: an LLM
// endpoint that, given page header snippets, identifies which pages are true
// section-header starts. Every failure mode here degrades to "no boundaries
// found"; the classification pipeline treats the oracle as best-effort.
package oracle

import "fmt"

// PageHeader is one page's snippet in a boundary request.
type PageHeader struct {
	Page   int    `json:"page"`
	Header string `json:"header"`
}

// Boundary is one identified section start.
type Boundary struct {
	Page    int    `json:"page"`
	Section string `json:"section"`
}

// RetryableError marks a transient transport failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable oracle error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
