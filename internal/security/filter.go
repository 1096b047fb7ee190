package security

import (
	"strings"
)

// Filter 无状态内容分类器：小写化后做敏感词子串匹配
type Filter struct {
	words []string
}

func NewFilter(blockedWords []string) *Filter {
	words := make([]string, 0, len(blockedWords))
	for _, w := range blockedWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	return &Filter{words: words}
}

// Classify 返回文本是否命中任一敏感词。空文本恒为 false。
func (f *Filter) Classify(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, w := range f.words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
