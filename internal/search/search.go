// Package search provides keyword search over free-text survey answers.
// Meilisearch is used when reachable; an in-memory scan over the current
// bundle serves as the fallback.
package search

import (
	"surveypulse/api/internal/survey"
)

// Entry is one indexed free-text answer.
type Entry struct {
	ID            string `json:"id"`
	ResponseID    string `json:"responseId"`
	QuestionID    string `json:"questionId"`
	QuestionTitle string `json:"questionTitle"`
	Text          string `json:"text"`
	SubmittedAt   string `json:"submittedAt,omitempty"`
}

// Response is a search result page.
type Response struct {
	Results []Entry `json:"results"`
	Total   int     `json:"total"`
	Query   string  `json:"query"`
}

// EntriesFromBundle extracts every non-empty text answer from a bundle,
// preserving the bundle's response order (most recent first after a sync).
func EntriesFromBundle(bundle survey.RawDataBundle) []Entry {
	var entries []Entry
	for _, response := range bundle.Responses {
		for _, answer := range response.Answers {
			if answer.QuestionType != survey.Text {
				continue
			}
			text, ok := answer.Value.(string)
			if !ok || text == "" {
				continue
			}
			entries = append(entries, Entry{
				ID:            response.ID + "-" + answer.QuestionID,
				ResponseID:    response.ID,
				QuestionID:    answer.QuestionID,
				QuestionTitle: answer.QuestionTitle,
				Text:          text,
				SubmittedAt:   response.SubmittedAt,
			})
		}
	}
	return entries
}
