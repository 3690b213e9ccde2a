package narration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "simple sentences",
			text:     "The fox ran. The bear slept.",
			expected: []string{"The fox ran.", "The bear slept."},
		},
		{
			name:     "mixed punctuation",
			text:     "Look out! Where did it go? Nobody knew.",
			expected: []string{"Look out!", "Where did it go?", "Nobody knew."},
		},
		{
			name:     "trailing fragment without punctuation",
			text:     "It was late. And then",
			expected: []string{"It was late.", "And then"},
		},
		{
			name:     "ellipsis stays with its sentence",
			text:     "He waited... and waited.",
			expected: []string{"He waited...", "and waited."},
		},
		{
			name:     "empty text",
			text:     "",
			expected: []string{},
		},
		{
			name:     "whitespace only",
			text:     "   \n\t  ",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitSentences(tt.text))
		})
	}
}
