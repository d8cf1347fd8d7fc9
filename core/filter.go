package core

import "strings"

// EnvironmentalFilter decides whether a user-authored task is about an
// environmental action. Implementations are heuristics and may be swapped
// without touching the ledger.
type EnvironmentalFilter interface {
	IsEnvironmental(title, impact string) bool
}

// FilterFunc adapts a plain function to EnvironmentalFilter.
type FilterFunc func(title, impact string) bool

func (f FilterFunc) IsEnvironmental(title, impact string) bool {
	return f(title, impact)
}

var DefaultEcoKeywords = []string{
	"recycle", "plant", "compost", "clean", "save", "reduce", "reuse",
	"green", "eco", "water", "energy", "waste", "tree", "nature",
	"environment", "pollution", "sustainable", "organic", "plastic",
}

// KeywordFilter accepts a task when the title or the impact text contains
// any keyword, compared case-insensitively as a substring.
type KeywordFilter struct {
	keywords []string
}

var _ EnvironmentalFilter = (*KeywordFilter)(nil)

func NewKeywordFilter(keywords ...string) *KeywordFilter {
	if len(keywords) == 0 {
		keywords = DefaultEcoKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &KeywordFilter{keywords: lowered}
}

func (f *KeywordFilter) IsEnvironmental(title, impact string) bool {
	title = strings.ToLower(title)
	impact = strings.ToLower(impact)
	for _, k := range f.keywords {
		if strings.Contains(title, k) || strings.Contains(impact, k) {
			return true
		}
	}
	return false
}
