package groq

import (
	"fmt"
	"strings"

	"github.com/dkravets/docqa/internal/core/domain"
)

const rewriteSystemPrompt = `You are a query rewriting assistant. Given a user's question, generate exactly 5 different ways to ask the same question using different words, phrasings, and synonyms. Each rewrite should be semantically equivalent but use different vocabulary. IMPORTANT: You must return exactly 5 queries, one per line, no numbering, no bullets, no extra text. Each line should be a complete question.`

const answerSystemPrompt = `You are a helpful HR assistant. Answer the user clearly using ONLY the provided context. If the answer isn't in context, say you couldn't find it. Format with short paragraphs and bullet lists where appropriate.`

func buildRewritePrompt(question string) string {
	return fmt.Sprintf("Original question: %q\n\nGenerate 5 different ways to ask this same question:", question)
}

func buildAnswerPrompt(question string, blocks []domain.ContextBlock) string {
	var context strings.Builder
	for _, block := range blocks {
		context.WriteString("Title: ")
		context.WriteString(block.Title)
		context.WriteString("\nSnippets:\n- ")
		context.WriteString(strings.Join(block.Snippets, "\n- "))
		context.WriteString("\n\n")
	}
	return fmt.Sprintf("Question: %s\n\nContext:\n%s", question, context.String())
}
