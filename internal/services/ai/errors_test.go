package ai

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRateLimitError(t *testing.T) {
	t.Parallel()

	if IsRateLimitError(nil) {
		t.Error("Expected nil to not be a rate limit error")
	}
	if !IsRateLimitError(errors.New("429 too many requests")) {
		t.Error("Expected 429 message to classify as rate limited")
	}
	if !IsRateLimitError(&APIError{StatusCode: 429}) {
		t.Error("Expected 429 APIError to classify as rate limited")
	}
	if IsRateLimitError(&APIError{StatusCode: 429, IsPermanent: true}) {
		t.Error("Expected permanent quota error to not count as rate limited")
	}
	if IsRateLimitError(errors.New("connection refused")) {
		t.Error("Expected unrelated error to not classify")
	}
}

func TestIsQuotaError(t *testing.T) {
	t.Parallel()

	if !IsQuotaError(errors.New("insufficient_quota: billing hard limit")) {
		t.Error("Expected quota message to classify")
	}
	if !IsQuotaError(&APIError{IsPermanent: true}) {
		t.Error("Expected permanent APIError to classify")
	}
	if IsQuotaError(errors.New("timeout")) {
		t.Error("Expected unrelated error to not classify")
	}
}

func TestExtractAPIError(t *testing.T) {
	t.Parallel()

	if got := ExtractAPIError(nil); got != nil {
		t.Errorf("Expected nil for nil error, got %+v", got)
	}
	if got := ExtractAPIError(errors.New("dial tcp: timeout")); got != nil {
		t.Errorf("Expected nil for transport error, got %+v", got)
	}

	apiErr := ExtractAPIError(fmt.Errorf("request failed: 429 rate limit exceeded"))
	if apiErr == nil || apiErr.StatusCode != 429 || apiErr.IsPermanent {
		t.Errorf("Expected transient 429 error, got %+v", apiErr)
	}

	quotaErr := ExtractAPIError(errors.New("insufficient_quota"))
	if quotaErr == nil || !quotaErr.IsPermanent {
		t.Errorf("Expected permanent quota error, got %+v", quotaErr)
	}
}

func TestSanitizeAPIKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", RedactedValue},
		{"sk-abcdefghijklmnop", "sk-a" + RedactedValue + "mnop"},
	}

	for _, tt := range tests {
		if got := SanitizeAPIKey(tt.in); got != tt.want {
			t.Errorf("SanitizeAPIKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizePromptTruncates(t *testing.T) {
	t.Parallel()

	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}

	got := SanitizePrompt(string(long), false)
	if len(got) != MaxPreviewLength+3 {
		t.Errorf("Expected preview truncated to %d chars, got %d", MaxPreviewLength+3, len(got))
	}

	// Control characters are stripped
	if got := SanitizePrompt("linha\x00um\x1b[31m", false); got != "linhaum[31m" {
		t.Errorf("Expected control characters stripped, got %q", got)
	}
}
