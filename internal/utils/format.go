package utils

import "strings"

// logSnippetLen bounds request and statement text written to the log
const logSnippetLen = 200

// TruncateText truncates text to maxLen characters, adding "..." if truncated.
// Newlines become spaces for single-line display.
func TruncateText(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)

	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return text[:maxLen-3] + "..."
}

// EscapeForLogging escapes analyst-supplied text for safe single-line logging
func EscapeForLogging(text string, maxLen int) string {
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}

	text = strings.ReplaceAll(text, "\n", "\\n")
	text = strings.ReplaceAll(text, "\r", "\\r")
	text = strings.ReplaceAll(text, "\t", "\\t")

	return text
}

// LogSnippet is EscapeForLogging with the default length bound
func LogSnippet(text string) string {
	return EscapeForLogging(text, logSnippetLen)
}
