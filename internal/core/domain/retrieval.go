package domain

// ScoredCandidate carries the best score a document received across all
// query variations of a single retrieval request. MaxScore only grows while
// variations are being merged.
type ScoredCandidate struct {
	Document Document
	MaxScore float64
}

// RerankedCandidate is the reranker's output with every signal component
// populated, so the final ordering can be explained and tested.
type RerankedCandidate struct {
	Document   Document
	Combined   float64
	Similarity float64
	Keyword    float64
	Recency    float64
}

// ContextBlock is the snippet-level evidence for one selected document,
// handed to the answer-generation step.
type ContextBlock struct {
	DocumentID string   `json:"document_id"`
	Title      string   `json:"title"`
	Snippets   []string `json:"snippets"`
}

// Reference is a lightweight citation pointer.
type Reference struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
}

type ChatAnswer struct {
	Message    string      `json:"message"`
	References []Reference `json:"references"`
}
