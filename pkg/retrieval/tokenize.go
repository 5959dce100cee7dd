package retrieval

import "strings"

// Tokenize lowercases and splits on whitespace. It is the single
// tokenization function for both corpus indexing and query scoring;
// the two sides must never diverge or lexical scores silently skew.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
