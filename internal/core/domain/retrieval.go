package domain

import "fmt"

type EmbeddingVector []float32

// IsZero reports whether every component is zero. An empty vector counts as zero.
func (v EmbeddingVector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

type ChunkMetadata struct {
	Source      string  `json:"source"`
	DocType     DocType `json:"doc_type"`
	ChunkID     int     `json:"chunk_id"`
	TotalChunks int     `json:"total_chunks"`
	Text        string  `json:"text"`
}

type IndexRecord struct {
	ID       string          `json:"id"`
	Values   EmbeddingVector `json:"values"`
	Metadata ChunkMetadata   `json:"metadata"`
}

// RecordID derives the positional record id used for idempotent re-ingestion.
func RecordID(position int) string {
	return fmt.Sprintf("chunk-%d", position)
}

type SearchFilter struct {
	DocType DocType
}

type RetrievalHit struct {
	Source  string  `json:"source"`
	DocType DocType `json:"doc_type"`
	ChunkID int     `json:"chunk_id"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

type Intent string

const (
	IntentUseCase  Intent = "use_case"
	IntentServices Intent = "services"
)

// PrimaryDocType is the content class an intent retrieves first.
func (i Intent) PrimaryDocType() DocType {
	if i == IntentUseCase {
		return DocTypeUseCases
	}
	return DocTypeServices
}

// ResponseType selects the composer instruction template.
type ResponseType string

const (
	ResponseServices ResponseType = "services"
	ResponseUseCases ResponseType = "use_cases"
	ResponseGeneral  ResponseType = "general"
)

type SolutionResult struct {
	Text         string       `json:"text"`
	Query        string       `json:"query"`
	Intent       Intent       `json:"intent"`
	ResponseType ResponseType `json:"response_type"`
	Hits         int          `json:"hits"`
	Fallback     bool         `json:"fallback"`
}

type GenerationRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
	TopP        float64
	MaxTokens   int
}
