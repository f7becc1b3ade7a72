// Package ingest turns raw respondent records into normalized responses and
// reconciles them incrementally against the cached bundle.
package ingest

import (
	"fmt"
	"strconv"

	"surveypulse/api/internal/catalog"
	"surveypulse/api/internal/survey"
	"surveypulse/api/internal/upstream"
)

// TransformRespondent maps one upstream respondent record into a normalized
// response. Answers are emitted in catalog order; an answer whose question id
// is absent from the catalog is dropped silently (the question was deleted
// from the survey after the respondent answered).
func TransformRespondent(rec upstream.Respondent, cat *catalog.Catalog) survey.RawSurveyResponse {
	var answers []survey.RawAnswer
	for _, meta := range cat.Ordered() {
		data, answered := rec.Questions[meta.ID]
		if !answered {
			continue
		}
		answers = append(answers, survey.RawAnswer{
			QuestionID:    meta.ID,
			QuestionTitle: meta.Title,
			QuestionType:  meta.Type,
			Value:         resolveValue(data.Choices, meta),
		})
	}

	status := survey.StatusPartial
	if rec.Complete {
		status = survey.StatusComplete
	}
	submitted := rec.UpdatedAt
	if submitted == "" {
		submitted = rec.CreatedAt
	}

	return survey.RawSurveyResponse{
		ID:          rec.ID,
		Status:      status,
		SubmittedAt: submitted,
		StartedAt:   rec.CreatedAt,
		Answers:     answers,
	}
}

// resolveValue maps the raw answer payload to its normalized value. Choice
// answers arrive as 1-based indices into the declared choice list; an index
// that cannot be resolved passes through unresolved rather than being lost.
func resolveValue(raw []any, meta survey.QuestionMeta) any {
	if meta.Type == survey.MultipleChoice {
		resolved := make([]any, 0, len(raw))
		for _, el := range raw {
			if label, ok := resolveChoiceIndex(el, meta.Choices); ok {
				resolved = append(resolved, label)
			} else {
				resolved = append(resolved, stringify(el))
			}
		}
		return resolved
	}

	if len(raw) == 0 {
		return nil
	}
	value := raw[0]
	if meta.Type == survey.SingleChoice {
		if label, ok := resolveChoiceIndex(value, meta.Choices); ok {
			return label
		}
	}
	return value
}

func resolveChoiceIndex(value any, choices []survey.Choice) (string, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	default:
		return "", false
	}
	idx := int(f)
	if float64(idx) != f || idx < 1 || idx > len(choices) {
		return "", false
	}
	return choices[idx-1].Label, true
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
