// ABOUTME: Chunker splits document text into overlapping segments for embedding
// ABOUTME: Greedy paragraph → sentence packing with a 4-characters-per-token budget
package core

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CharsPerToken approximates token counts without a tokenizer
const CharsPerToken = 4

// paragraphBreak matches runs of two or more newlines (CRLF tolerated)
var paragraphBreak = regexp.MustCompile(`\r?\n(?:\r?\n)+`)

// Chunker holds the token budget for ChunkText
type Chunker struct {
	chunkSizeTokens int
	overlapTokens   int
}

// NewChunker creates a Chunker with the given chunk size and overlap in tokens
func NewChunker(chunkSizeTokens, overlapTokens int) *Chunker {
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	return &Chunker{chunkSizeTokens: chunkSizeTokens, overlapTokens: overlapTokens}
}

// Chunk splits text using the configured budget
func (c *Chunker) Chunk(text string) []string {
	return ChunkText(text, c.chunkSizeTokens, c.overlapTokens)
}

// ChunkText splits text into ordered, trimmed segments of roughly chunkSizeTokens tokens.
// Each new segment is seeded with the last overlapTokens tokens of the previous one.
// Paragraphs are kept whole when they fit; oversized paragraphs are packed sentence by sentence.
func ChunkText(text string, chunkSizeTokens, overlapTokens int) []string {
	if collapseWhitespace(text) == "" {
		return nil
	}

	targetChars := chunkSizeTokens * CharsPerToken
	overlapChars := overlapTokens * CharsPerToken

	var (
		chunks []string
		buf    string
	)

	// flush emits the buffer and reseeds it with its tail
	flush := func() {
		chunks = append(chunks, strings.TrimSpace(buf))
		buf = tail(buf, overlapChars)
	}

	for _, paragraph := range paragraphBreak.Split(text, -1) {
		paragraph = collapseWhitespace(paragraph)
		if paragraph == "" {
			continue
		}

		if runeLen(paragraph) > targetChars {
			for _, sentence := range splitSentences(paragraph) {
				if runeLen(buf)+runeLen(sentence) > targetChars && buf != "" {
					flush()
				}
				buf += " " + sentence
			}
			continue
		}

		if runeLen(buf)+runeLen(paragraph) > targetChars && buf != "" {
			flush()
		}
		buf += "\n\n" + paragraph
	}

	if strings.TrimSpace(buf) != "" {
		chunks = append(chunks, strings.TrimSpace(buf))
	}

	return chunks
}

// collapseWhitespace replaces whitespace runs with single spaces and trims the ends
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitSentences splits on whitespace that follows '.', '!' or '?'
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
		prev      rune
	)

	for i, r := range text {
		if unicode.IsSpace(r) && (prev == '.' || prev == '!' || prev == '?') {
			if s := text[start:i]; s != "" {
				sentences = append(sentences, s)
			}
			start = -1
		}
		if start == -1 && !unicode.IsSpace(r) {
			start = i
		}
		prev = r
	}

	if start >= 0 && start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// tail returns the last n runes of s, or "" when n is zero
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := utf8.RuneCountInString(s)
	if n >= count {
		return s
	}
	skip := count - n
	for i := range s {
		if skip == 0 {
			return s[i:]
		}
		skip--
	}
	return ""
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
