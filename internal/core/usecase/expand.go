package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dkravets/docqa/internal/core/ports"
)

// queryVariationCount is the number of paraphrases requested from the
// rewriter. The working set handed to retrieval is the original question
// plus these variations.
const queryVariationCount = 5

// expandQuery produces the query variations for one question. It never
// fails: a missing rewriter, a failed call or unusable output all degrade to
// the original question repeated in every slot.
func expandQuery(ctx context.Context, rewriter ports.QueryRewriter, question string, logger *slog.Logger) []string {
	fallback := make([]string, queryVariationCount)
	for i := range fallback {
		fallback[i] = question
	}
	if rewriter == nil {
		return fallback
	}

	raw, err := rewriter.Rewrite(ctx, question)
	if err != nil {
		if logger != nil {
			logger.Warn("query_rewrite_failed", "error", err)
		}
		return fallback
	}

	variations := parseVariations(raw)
	if len(variations) == 0 {
		return fallback
	}
	for len(variations) < queryVariationCount {
		variations = append(variations, question)
	}
	return variations[:queryVariationCount]
}

// parseVariations keeps non-empty lines that are not numbered or bulleted,
// up to queryVariationCount.
func parseVariations(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isNumberedLine(line) || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") {
			continue
		}
		out = append(out, line)
		if len(out) == queryVariationCount {
			break
		}
	}
	return out
}

func isNumberedLine(line string) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return false
	}
	return line[i] == '.' || line[i] == ')'
}
