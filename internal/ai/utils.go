package ai

import (
	"log/slog"
	"time"
	"unicode/utf8"
)

// logModelCall logs usage metrics for a single model call.
func logModelCall(operation string, inputTokens, outputTokens int64, duration time.Duration) {
	slog.Info("model call completed",
		"operation", operation,
		"inputTokens", inputTokens,
		"outputTokens", outputTokens,
		"duration", duration.Round(time.Millisecond))
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// safeTruncate truncates a string to maxLen bytes while preserving UTF-8
// encoding. If truncation would split a multi-byte sequence, it backs off to
// a valid boundary.
func safeTruncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	truncated := s[:maxLen]

	// Max UTF-8 sequence length is 4 bytes, so at most 3 back-off steps.
	for i := 0; i < 4 && len(truncated) > 0; i++ {
		if utf8.ValidString(truncated) {
			return truncated
		}
		truncated = truncated[:len(truncated)-1]
	}
	return ""
}
