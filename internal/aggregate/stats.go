package aggregate

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"surveypulse/api/internal/survey"
)

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// SafePercentage returns value/total as a percentage rounded to one decimal,
// and 0 when total is zero.
func SafePercentage(value, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(value)/float64(total)*1000) / 10
}

// NormalizeChoiceLabel is the grouping key for choice answers.
func NormalizeChoiceLabel(value string) string {
	return survey.NormalizeChoiceLabel(value)
}

// Average returns the mean rounded to one decimal, or 0 for an empty input.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return round1(sum / float64(len(values)))
}

// Median returns the median rounded to one decimal (mean of the middle two
// for even counts), or 0 for an empty input.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 != 0 {
		return round1(sorted[mid])
	}
	return round1((sorted[mid-1] + sorted[mid]) / 2)
}

// Stop words excluded from word frequency extraction. The deployed surveys
// are French, so the list is French function words.
var stopWords = map[string]struct{}{
	"les": {}, "des": {}, "avec": {}, "plus": {}, "pour": {},
	"une": {}, "vos": {}, "nos": {}, "est": {}, "sur": {},
}

var punctReplacer = strings.NewReplacer(
	".", " ", ",", " ", ";", " ", ":", " ", "!", " ", "?", " ",
)

// TopWords tokenizes sentences to lowercase words, drops punctuation, short
// words, and stop words, and returns the limit most frequent words by count
// descending (first-seen order breaks ties).
func TopWords(sentences []string, limit int) []survey.WordCount {
	freq := map[string]int{}
	var order []string

	for _, sentence := range sentences {
		cleaned := punctReplacer.Replace(strings.ToLower(sentence))
		for _, word := range strings.Fields(cleaned) {
			if utf8.RuneCountInString(word) <= 3 {
				continue
			}
			if _, skip := stopWords[word]; skip {
				continue
			}
			if _, seen := freq[word]; !seen {
				order = append(order, word)
			}
			freq[word]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	out := make([]survey.WordCount, 0, len(order))
	for _, word := range order {
		out = append(out, survey.WordCount{Word: word, Count: freq[word]})
	}
	return out
}
