package usecase

import (
	"strings"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

var useCaseKeywords = []string{
	"roi",
	"cost saving",
	"case study",
	"example",
	"productivity",
	"revenue",
	"impact",
	"results",
	"implementation",
}

// UseCaseKeywords returns the substrings that route a query to case studies.
func UseCaseKeywords() []string {
	out := make([]string, len(useCaseKeywords))
	copy(out, useCaseKeywords)
	return out
}

// ClassifyIntent is a plain substring match, so "roi" also fires inside
// words like "android".
func ClassifyIntent(query string) domain.Intent {
	lower := strings.ToLower(query)
	for _, kw := range useCaseKeywords {
		if strings.Contains(lower, kw) {
			return domain.IntentUseCase
		}
	}
	return domain.IntentServices
}
