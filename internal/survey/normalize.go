package survey

import "strings"

// NormalizeChoiceLabel collapses whitespace, trims, and lowercases a choice
// label. The result is the stable key used to dedup and group choice answers.
func NormalizeChoiceLabel(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}
