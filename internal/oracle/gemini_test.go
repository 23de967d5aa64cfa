package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// geminiServer returns an httptest server whose handler body is rendered
// from handle, wrapped in the generateContent response envelope when text is
// returned.
func geminiServer(t *testing.T, handle func(req geminiRequest, n int) (status int, text string)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if !strings.Contains(r.URL.RawQuery, "key=") {
			t.Error("request missing api key")
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		status, text := handle(req, int(n))
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":{"message":"overloaded"}}`)
			return
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	return srv, &calls
}

func testClient(t *testing.T, srv *httptest.Server) *GeminiClient {
	t.Helper()
	c := NewGeminiClient("test-key", "gemini-2.0-flash", 5*time.Second)
	c.SetBaseURL(srv.URL)
	return c
}

func TestFindBoundaries_NoCredentials(t *testing.T) {
	c := NewGeminiClient("", "gemini-2.0-flash", time.Second)
	got, err := c.FindBoundaries(context.Background(), []PageHeader{{Page: 1, Header: "x"}})
	if err != nil || got != nil {
		t.Errorf("missing key must degrade silently, got (%v, %v)", got, err)
	}
}

func TestFindBoundaries_EmptyHeaders(t *testing.T) {
	c := NewGeminiClient("k", "gemini-2.0-flash", time.Second)
	got, err := c.FindBoundaries(context.Background(), nil)
	if err != nil || got != nil {
		t.Errorf("no headers must be a no-op, got (%v, %v)", got, err)
	}
}

func TestFindBoundaries_ParsesAndNormalizes(t *testing.T) {
	answer := "```json\n" + `[
		{"page": 3, "section": "03 30 00"},
		{"page": 7, "section": "042200"},
		{"page": 9, "section": "16 05 00"},
		{"page": 11, "section": "26"}
	]` + "\n```"

	srv, calls := geminiServer(t, func(req geminiRequest, n int) (int, string) {
		prompt := req.Contents[0].Parts[0].Text
		if !strings.Contains(prompt, "Page 3:") {
			t.Errorf("prompt missing page header line: %q", prompt)
		}
		return http.StatusOK, answer
	})
	defer srv.Close()

	c := testClient(t, srv)
	headers := []PageHeader{
		{Page: 3, Header: "SECTION 03 30 00"},
		{Page: 7, Header: "SECTION 042200"},
	}
	got, err := c.FindBoundaries(context.Background(), headers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Boundary{
		{Page: 3, Section: "03 30 00"},
		{Page: 7, Section: "04 22 00"},
		{Page: 11, Section: "26 00 00"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d boundaries %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("boundary %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if *calls != 1 {
		t.Errorf("expected a single call, got %d", *calls)
	}
}

func TestFindBoundaries_RetriesRateLimit(t *testing.T) {
	srv, calls := geminiServer(t, func(req geminiRequest, n int) (int, string) {
		if n == 1 {
			return http.StatusTooManyRequests, ""
		}
		return http.StatusOK, `[{"page": 2, "section": "03 30 00"}]`
	})
	defer srv.Close()

	c := testClient(t, srv)
	got, err := c.FindBoundaries(context.Background(), []PageHeader{{Page: 2, Header: "x"}})
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if len(got) != 1 || got[0].Section != "03 30 00" {
		t.Errorf("unexpected boundaries: %v", got)
	}
	if *calls != 2 {
		t.Errorf("expected retry after 429: got %d calls", *calls)
	}
	if snap := c.Stats.Snapshot(); snap.Count != 2 || snap.Failures != 1 {
		t.Errorf("every attempt must be recorded: count %d, failures %d", snap.Count, snap.Failures)
	}
}

func TestFindBoundaries_ExhaustsRetries(t *testing.T) {
	srv, calls := geminiServer(t, func(req geminiRequest, n int) (int, string) {
		return http.StatusServiceUnavailable, ""
	})
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.FindBoundaries(context.Background(), []PageHeader{{Page: 1, Header: "x"}})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	var re *RetryableError
	if !errors.As(err, &re) || re.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected final RetryableError 503, got %v", err)
	}
	if *calls != maxAttempts {
		t.Errorf("expected %d attempts, got %d", maxAttempts, *calls)
	}
}

func TestFindBoundaries_RejectsMalformedAnswer(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not an array", `{"page": 1, "section": "03 30 00"}`},
		{"missing section", `[{"page": 1}]`},
		{"extra keys", `[{"page": 1, "section": "03 30 00", "confidence": 0.4}]`},
		{"not json", `the sections start on pages 3 and 7`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := geminiServer(t, func(req geminiRequest, n int) (int, string) {
				return http.StatusOK, tt.text
			})
			defer srv.Close()

			c := testClient(t, srv)
			_, err := c.FindBoundaries(context.Background(), []PageHeader{{Page: 1, Header: "x"}})
			if err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestExtractSection(t *testing.T) {
	srv, _ := geminiServer(t, func(req geminiRequest, n int) (int, string) {
		return http.StatusOK, "```json\n{\"equipment\": []}\n```"
	})
	defer srv.Close()

	c := testClient(t, srv)
	got, err := c.ExtractSection(context.Background(), "extract this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"equipment": []}` {
		t.Errorf("unexpected extraction payload: %s", got)
	}
}

func TestExtractSection_NoCredentials(t *testing.T) {
	c := NewGeminiClient("", "gemini-2.0-flash", time.Second)
	if _, err := c.ExtractSection(context.Background(), "x"); err == nil {
		t.Error("extraction without credentials must fail, not degrade")
	}
}

func TestStripCodeBlock(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n[1,2]\n```", "[1,2]"},
		{"```\n[1,2]\n```", "[1,2]"},
		{"  [1,2]  ", "[1,2]"},
		{"[1,2]", "[1,2]"},
	}
	for _, tt := range tests {
		if got := stripCodeBlock(tt.in); got != tt.want {
			t.Errorf("stripCodeBlock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeBoundary(t *testing.T) {
	tests := []struct {
		name   string
		in     Boundary
		want   Boundary
		wantOK bool
	}{
		{"canonical", Boundary{Page: 3, Section: "03 30 00"}, Boundary{Page: 3, Section: "03 30 00"}, true},
		{"compact", Boundary{Page: 3, Section: "042200"}, Boundary{Page: 3, Section: "04 22 00"}, true},
		{"bare division", Boundary{Page: 3, Section: "9"}, Boundary{Page: 3, Section: "09 00 00"}, true},
		{"invalid division", Boundary{Page: 3, Section: "16 05 00"}, Boundary{}, false},
		{"zero page", Boundary{Page: 0, Section: "03 30 00"}, Boundary{}, false},
		{"prose", Boundary{Page: 3, Section: "general requirements"}, Boundary{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeBoundary(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("normalizeBoundary(%+v) = (%+v, %v), want (%+v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStatsSnapshot(t *testing.T) {
	s := NewStats(time.Hour)
	for _, ms := range []int64{10, 20, 30} {
		s.Record(ms, false)
	}
	s.Record(40, true)

	snap := s.Snapshot()
	if snap.Count != 4 || snap.Failures != 1 || snap.MinMs != 10 || snap.MaxMs != 40 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if snap.AvgMs != 25 {
		t.Errorf("avg = %v, want 25", snap.AvgMs)
	}
	if snap.P50Ms != 25 {
		t.Errorf("p50 = %v, want 25", snap.P50Ms)
	}
}

func TestStatsSnapshot_Empty(t *testing.T) {
	s := NewStats(time.Hour)
	if snap := s.Snapshot(); snap.Count != 0 || snap.Failures != 0 {
		t.Errorf("empty window must aggregate to zero: %+v", snap)
	}
}
