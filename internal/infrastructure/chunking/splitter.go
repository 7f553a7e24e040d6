package chunking

import "strings"

// CharsPerToken approximates tokenization; no real tokenizer is run.
const CharsPerToken = 4

const (
	DefaultMaxTokens     = 400
	DefaultOverlapTokens = 50
)

type Splitter struct {
	MaxTokens     int
	OverlapTokens int
}

func NewSplitter(maxTokens, overlapTokens int) *Splitter {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	if overlapTokens >= maxTokens {
		overlapTokens = maxTokens / 4
	}
	return &Splitter{
		MaxTokens:     maxTokens,
		OverlapTokens: overlapTokens,
	}
}

func (s *Splitter) Split(text string) []string {
	return Chunk(text, s.MaxTokens, s.OverlapTokens)
}

// Chunk splits text into overlapping windows of at most maxTokens*CharsPerToken runes,
// preferring sentence and word boundaries over hard cuts. Text within the budget is
// returned as is, even when blank; only windows of a longer text are trimmed and
// dropped when empty.
func Chunk(text string, maxTokens, overlapTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	budget := maxTokens * CharsPerToken
	overlap := overlapTokens * CharsPerToken
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= budget {
		return []string{text}
	}

	spans := splitSpans(runes, budget, overlap)
	out := make([]string, 0, len(spans))
	for _, sp := range spans {
		chunk := strings.TrimSpace(string(runes[sp.start:sp.end]))
		if chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}

type span struct {
	start int
	end   int
}

func splitSpans(runes []rune, budget, overlap int) []span {
	n := len(runes)
	spans := make([]span, 0, n/budget+2)
	start := 0
	for start < n {
		end := start + budget
		if end >= n {
			spans = append(spans, span{start: start, end: n})
			break
		}
		end = windowEnd(runes, start, end, budget)
		spans = append(spans, span{start: start, end: end})

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return spans
}

func windowEnd(runes []rune, start, end, budget int) int {
	lastBreak := -1
	for i := end - 1; i >= start; i-- {
		if runes[i] == '.' || runes[i] == '\n' {
			lastBreak = i
			break
		}
	}
	if lastBreak > start+budget/2 {
		return lastBreak + 1
	}
	for i := end - 1; i > start; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return end
}
