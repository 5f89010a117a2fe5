// Package lang holds the upload boundary helpers: byte decoding and
// filename-based language sniffing.
package lang

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

var extToLang = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".go":   "go",
	".java": "java",
	".cpp":  "cpp",
	".c":    "c",
	".rs":   "rust",
}

// Sniff maps a filename to a language tag by extension. Returns "" for
// unmapped extensions.
func Sniff(filename string) string {
	return extToLang[strings.ToLower(filepath.Ext(filename))]
}

// Decode converts raw upload bytes to text. Valid UTF-8 passes through;
// anything else falls back to Latin-1 so every byte maps to a rune and the
// pipeline is never blocked by encoding errors.
func Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// CountLines returns the 1-based line count of text, 0 for empty input.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

var minifiedRe = regexp.MustCompile(`[;{}]{20,}`)

// IsMinified guesses whether text is minified source: very few lines for
// its size, or long runs of punctuation.
func IsMinified(text string) bool {
	if CountLines(text) <= 3 && len(text) > 500 {
		return true
	}
	return minifiedRe.MatchString(text)
}
