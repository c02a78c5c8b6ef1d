package usecase

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	snippetSentenceCap = 40
	snippetMaxLen      = 220
	snippetCutLen      = 200
)

// extractSnippets pulls the sentences most relevant to the query out of one
// document. An exact phrase hit returns the single sentence containing it;
// otherwise sentences are keyword-scored and the best ones win. The result is
// never empty when the document has a title or content.
func (s *keywordScorer) extractSnippets(query, title, content string, maxSnippets int) []string {
	if content == "" {
		if title == "" {
			return nil
		}
		return []string{title}
	}

	if strings.Contains(strings.ToLower(content), strings.ToLower(query)) {
		lowered := strings.ToLower(query)
		for _, sentence := range splitSentences(content) {
			if strings.Contains(strings.ToLower(sentence), lowered) {
				return []string{sentence}
			}
		}
	}

	terms := uniqueTokens(query)
	sentences := splitSentences(content)
	if len(sentences) > snippetSentenceCap {
		sentences = sentences[:snippetSentenceCap]
	}

	type scoredSentence struct {
		text  string
		score float64
	}
	scored := make([]scoredSentence, 0, len(sentences))
	for _, sentence := range sentences {
		sc := s.Score(strings.Join(terms, " "), "", sentence)
		if sc > 0 {
			scored = append(scored, scoredSentence{text: sentence, score: sc})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	if len(scored) == 0 {
		if len(sentences) == 0 {
			return []string{title}
		}
		return []string{truncateSnippet(sentences[0])}
	}

	if len(scored) > maxSnippets {
		scored = scored[:maxSnippets]
	}
	out := make([]string, 0, len(scored))
	for _, sc := range scored {
		out = append(out, truncateSnippet(sc.text))
	}
	return out
}

func truncateSnippet(s string) string {
	if len(s) <= snippetMaxLen {
		return s
	}
	// Back up to a rune boundary so the cut never splits a multi-byte rune.
	cut := snippetCutLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func uniqueTokens(text string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, 8)
	for _, t := range tokenize(text) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// splitSentences cuts after '.', '!' or '?' followed by whitespace.
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	var b strings.Builder
	for i, r := range runes {
		b.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && isSpaceRune(runes[i+1]) {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func isSpaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
