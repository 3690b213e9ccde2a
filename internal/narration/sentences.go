package narration

import (
	"regexp"
	"strings"
)

// sentencePattern captures runs of text up to and including terminal
// punctuation. A trailing fragment without punctuation still counts as a
// sentence.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// SplitSentences breaks page text into the units the narrator reads and
// highlights one at a time. Whitespace-only fragments are dropped.
func SplitSentences(text string) []string {
	matches := sentencePattern.FindAllString(text, -1)

	sentences := make([]string, 0, len(matches))
	for _, match := range matches {
		sentence := strings.TrimSpace(match)
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	return sentences
}
