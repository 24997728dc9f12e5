// Package wordcount implements the word-count proxy used for length filtering.
package wordcount

import "regexp"

// wordRun matches maximal runs of Latin letters, Cyrillic letters and ASCII
// digits. This is a cheap proxy for natural-language word count, not a
// tokenizer: "don't" counts as two runs, markup leftovers count as zero.
var wordRun = regexp.MustCompile(`[0-9A-Za-zА-Яа-яЁё]+`)

// Count returns the number of word runs in text.
func Count(text string) int {
	return len(wordRun.FindAllStringIndex(text, -1))
}
