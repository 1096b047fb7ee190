package security

import (
	"testing"

	"chatwarden/internal/botconfig"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Classify(t *testing.T) {
	f := NewFilter(botconfig.DefaultBlockedWords())

	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"clean text", "hello everyone, nice weather", false},
		{"direct hit", "I can hack this server", true},
		{"case insensitive", "best CHEAT codes here", true},
		{"substring match", "check out my autoclicker", true},
		{"empty text", "", false},
		{"whitespace only", "   \t\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Classify(tt.text))
		})
	}
}

func TestFilter_CustomWords(t *testing.T) {
	f := NewFilter([]string{"Casino", "  PROMO  ", ""})

	// 构造时小写化并去空白，空词被忽略
	assert.True(t, f.Classify("visit our casino now"))
	assert.True(t, f.Classify("big promo inside"))
	assert.False(t, f.Classify("ordinary message"))
}

func TestFilter_NoWords(t *testing.T) {
	f := NewFilter(nil)
	assert.False(t, f.Classify("anything at all"))
}
