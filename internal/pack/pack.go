// Package pack fits file excerpts into fixed character budgets for prompt
// construction. One truncation core serves two policies: a head+tail
// sandwich for structured preview blocks, and a head-only cut for the
// plain-text prompt payload.
package pack

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// File is one input to the packer, in submission order.
type File struct {
	Filename string
	Language string // "" = unknown
	Content  string
}

// Block is a budgeted excerpt of one file prepared for a summarization
// request.
type Block struct {
	Filename string
	Language string
	Preview  string
}

const (
	sandwichMarker = "\n...\n"
	headMarker     = "\n\n# [truncated]\n"
)

// Packer bounds total prompt size regardless of file count or size.
// PerFileChars is a soft fair-share cap so one huge file cannot starve the
// rest; TotalChars is the hard ceiling of the downstream request.
type Packer struct {
	PerFileChars int
	TotalChars   int
}

// Blocks builds per-file preview blocks in submission order. A file that
// fits the per-file cap is included whole; a longer one becomes a head+tail
// sandwich around a truncation marker. A running total budget is decremented
// by each preview; a preview that would overflow the remaining budget is cut
// to fit exactly, and once the budget is spent later files are silently
// dropped.
func (p Packer) Blocks(files []File) []Block {
	var blocks []Block
	remaining := p.TotalChars

	for _, f := range files {
		if remaining <= 0 {
			break
		}
		preview := f.Content
		if len(preview) > p.PerFileChars {
			preview = sandwich(preview, p.PerFileChars)
		}
		if len(preview) > remaining {
			preview = cutHead(preview, remaining)
		}
		lang := f.Language
		if lang == "" {
			lang = "unknown"
		}
		blocks = append(blocks, Block{Filename: f.Filename, Language: lang, Preview: preview})
		remaining -= len(preview)
	}
	return blocks
}

// Payload concatenates all files into a single fenced string for the
// plain-text request path. Each file gets a fair share of the total budget,
// head-truncated only, and the concatenation passes through one final global
// cut as a safety net.
func (p Packer) Payload(files []File) string {
	if len(files) == 0 {
		return "No files provided."
	}

	perFile := p.PerFileChars
	if share := p.TotalChars / len(files); share < perFile {
		perFile = share
	}

	parts := make([]string, 0, len(files))
	for _, f := range files {
		name := f.Filename
		if name == "" {
			name = "unknown"
		}
		text := head(f.Content, perFile)
		parts = append(parts, fmt.Sprintf("### %s\n```%s\n%s\n```\n", name, f.Language, text))
	}
	return head(strings.Join(parts, "\n"), p.TotalChars)
}

// sandwich keeps the first and last halves of the allowance so both leading
// context (imports, signatures) and trailing logic survive truncation.
func sandwich(text string, limit int) string {
	half := limit / 2
	return cutHead(text, half) + sandwichMarker + cutTail(text, half)
}

// head cuts text to limit from the front, preferring the last newline when
// it lands past 80% of the limit, and appends a truncation marker.
func head(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := cutHead(text, limit)
	if nl := strings.LastIndex(cut, "\n"); nl > limit*8/10 {
		cut = cut[:nl]
	}
	return cut + headMarker
}

// cutHead returns at most limit leading bytes of s, backed off so the cut
// never splits a UTF-8 rune.
func cutHead(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// cutTail returns at most limit trailing bytes of s, advanced so the slice
// starts on a rune boundary.
func cutTail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	start := len(s) - limit
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
