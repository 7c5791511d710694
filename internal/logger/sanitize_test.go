package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{name: "empty", input: "", maxLength: 100, want: ""},
		{name: "plain text", input: "hello world", maxLength: 100, want: "hello world"},
		{name: "keeps whitespace", input: "a\tb\nc\rd", maxLength: 100, want: "a\tb\nc\rd"},
		{name: "strips control chars", input: "bad\x00\x1bvalue", maxLength: 100, want: "badvalue"},
		{name: "truncates", input: strings.Repeat("x", 10), maxLength: 4, want: "xxxx..."},
		{name: "invalid utf8 dropped", input: "caf\xffe", maxLength: 100, want: "cafe"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := SanitizeString(tc.input, tc.maxLength)
			if got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSanitizeStringDefaultLimit(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", MaxGeneralStringLength+50)
	got := SanitizeString(long, 0)
	if len(got) != MaxGeneralStringLength+3 {
		t.Errorf("Expected length %d, got %d", MaxGeneralStringLength+3, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Expected truncated string to end with ellipsis")
	}
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	got := SanitizePath("/api/v1/tasks\x00/123")
	if got != "/api/v1/tasks/123" {
		t.Errorf("Expected /api/v1/tasks/123, got %q", got)
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("Expected empty string for nil error, got %q", got)
	}

	err := errors.New("query failed\x1b[31m")
	if got := SanitizeError(err); got != "query failed[31m" {
		t.Errorf("Expected sanitized message, got %q", got)
	}
}
