package prompt

import (
	"strings"

	"ai-support-be/pkg/prompt/resolver"
)

// ProductMatcher finds the product the conversation was last about.
type ProductMatcher interface {
	// LastMentioned returns the position in products of the most recently
	// mentioned product, or ok=false.
	LastMentioned(history []resolver.ConversationTurn, products []resolver.RAGEntry) (pos int, ok bool)
}

// NameMatcher looks for a product's "name" metadata inside the latest turns.
// Matching is substring based on normalized text.
type NameMatcher struct {
	// Lookback bounds how many recent turns are scanned.
	Lookback int
	// MinNameRunes skips names too short to match reliably.
	MinNameRunes int
}

func NewNameMatcher() *NameMatcher {
	return &NameMatcher{Lookback: 6, MinNameRunes: 3}
}

func (m *NameMatcher) LastMentioned(history []resolver.ConversationTurn, products []resolver.RAGEntry) (int, bool) {
	names := make([]string, len(products))
	for i, p := range products {
		if p.Type != resolver.RAGTypeProduct {
			continue
		}
		if name := ProductName(p); name != "" {
			n := resolver.NormalizeArabic(name)
			if len([]rune(n)) >= m.MinNameRunes {
				names[i] = n
			}
		}
	}

	scanned := 0
	for i := len(history) - 1; i >= 0 && scanned < m.Lookback; i-- {
		scanned++
		text := " " + resolver.NormalizeArabic(history[i].Content) + " "

		best, bestLen := -1, 0
		for pos, n := range names {
			if n != "" && strings.Contains(text, n) && len(n) > bestLen {
				best, bestLen = pos, len(n)
			}
		}
		if best >= 0 {
			return best, true
		}
	}
	return -1, false
}

// ProductName reads the "name" metadata of a RAG entry.
func ProductName(entry resolver.RAGEntry) string {
	if entry.Metadata == nil {
		return ""
	}
	if name, ok := entry.Metadata["name"].(string); ok {
		return strings.TrimSpace(name)
	}
	return ""
}
