package domain

import "strings"

type DocType string

const (
	DocTypeServices DocType = "services"
	DocTypeUseCases DocType = "use_cases"
)

// PreviewLength bounds the chunk text persisted as index metadata.
const PreviewLength = 1000

// DocTypeFromFilename classifies a knowledge file by naming convention.
func DocTypeFromFilename(name string) DocType {
	if strings.Contains(strings.ToLower(name), "services") {
		return DocTypeServices
	}
	return DocTypeUseCases
}

// Other returns the complementary content class.
func (t DocType) Other() DocType {
	if t == DocTypeServices {
		return DocTypeUseCases
	}
	return DocTypeServices
}

type Document struct {
	Source  string  `json:"source"`
	DocType DocType `json:"doc_type"`
	Text    string  `json:"text"`
}

type Chunk struct {
	Text        string  `json:"text"`
	Source      string  `json:"source"`
	DocType     DocType `json:"doc_type"`
	ChunkID     int     `json:"chunk_id"`
	TotalChunks int     `json:"total_chunks"`
}

// Preview returns the chunk text truncated to PreviewLength runes.
func (c Chunk) Preview() string {
	return TruncateRunes(c.Text, PreviewLength)
}

func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
