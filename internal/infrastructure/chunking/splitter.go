// Package chunking splits long text into bounded, overlapping segments so
// each segment can be embedded independently without losing continuity at
// the boundaries.
package chunking

import "strings"

const (
	defaultMaxLen  = 2000
	defaultOverlap = 200
)

type Splitter struct {
	MaxLen  int
	Overlap int
}

func NewSplitter(maxLen, overlap int) *Splitter {
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxLen {
		overlap = maxLen / 4
	}
	return &Splitter{MaxLen: maxLen, Overlap: overlap}
}

// Split greedily packs sentences into chunks of at most MaxLen characters.
// When a chunk flushes, the next one starts with the last Overlap characters
// of the flushed chunk. A single sentence longer than MaxLen falls back to
// word-boundary filling with no overlap carry for that sentence.
func (s *Splitter) Split(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		test := sentence
		if current != "" {
			test = current + " " + sentence
		}
		if len(test) <= s.MaxLen {
			current = test
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
			if s.Overlap > 0 {
				tail := current
				if len(tail) > s.Overlap {
					tail = tail[len(tail)-s.Overlap:]
				}
				current = strings.TrimSpace(tail + " " + sentence)
			} else {
				current = sentence
			}
			continue
		}

		// Oversized single sentence: greedy word fill.
		wordChunk := ""
		for _, word := range strings.Split(sentence, " ") {
			if wordChunk != "" && len(wordChunk)+1+len(word) > s.MaxLen {
				chunks = append(chunks, wordChunk)
				wordChunk = word
				continue
			}
			if wordChunk == "" {
				wordChunk = word
			} else {
				wordChunk += " " + word
			}
		}
		current = wordChunk
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

// splitSentences cuts after '.', '!' or '?' followed by whitespace and trims
// every sentence.
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	var b strings.Builder
	for i, r := range runes {
		b.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && isSpace(runes[i+1]) {
			if sentence := strings.TrimSpace(b.String()); sentence != "" {
				out = append(out, sentence)
			}
			b.Reset()
		}
	}
	if sentence := strings.TrimSpace(b.String()); sentence != "" {
		out = append(out, sentence)
	}
	return out
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
