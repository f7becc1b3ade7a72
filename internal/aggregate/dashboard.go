// Package aggregate computes dashboard statistics from a canonical response
// list. It performs no I/O; malformed input is a caller defect, not a runtime
// condition to recover from.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"surveypulse/api/internal/survey"
)

const (
	topWordLimit       = 5
	latestResponseMax  = 6
	answerPreviewLimit = 3
	defaultRatingScale = 5
)

// BuildInput carries everything the engine needs. Questions may be empty, in
// which case a catalog is synthesized from the answers in first-seen order.
// Days > 0 restricts the dataset to a trailing window. Now defaults to the
// wall clock and exists so tests can pin the output.
type BuildInput struct {
	Responses []survey.RawSurveyResponse
	Survey    survey.SurveyDetails
	Questions []survey.QuestionMeta
	Days      int
	Now       time.Time
}

// BuildDashboardData recomputes the full dashboard projection from a raw
// response list. The computation is deterministic for a fixed input and Now.
func BuildDashboardData(in BuildInput) survey.DashboardData {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	responses := in.Responses
	periodDays := 0
	if in.Days > 0 {
		periodDays = in.Days
		cutoff := now.AddDate(0, 0, -in.Days)
		windowed := make([]survey.RawSurveyResponse, 0, len(responses))
		for _, r := range responses {
			t := r.SubmittedTime()
			// Undated responses cannot be judged against the window; keep them.
			if t.IsZero() || !t.Before(cutoff) {
				windowed = append(windowed, r)
			}
		}
		responses = windowed
	}

	sorted := make([]survey.RawSurveyResponse, len(responses))
	copy(sorted, responses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedTime().Before(sorted[j].SubmittedTime())
	})

	total := len(sorted)
	completed := 0
	for _, r := range sorted {
		if r.Status != survey.StatusPartial {
			completed++
		}
	}

	firstDate, lastDate := now, now
	if total > 0 {
		if t := sorted[0].SubmittedTime(); !t.IsZero() {
			firstDate = t
		}
		if t := sorted[total-1].SubmittedTime(); !t.IsZero() {
			lastDate = t
		}
	}
	daySpan := math.Round(lastDate.Sub(firstDate).Hours() / 24)
	if daySpan < 1 {
		daySpan = 1
	}

	return survey.DashboardData{
		SurveyID:           in.Survey.ID,
		SurveyTitle:        in.Survey.Title,
		SurveyDescription:  in.Survey.Description,
		TotalResponses:     total,
		CompletedResponses: completed,
		CompletionRate:     SafePercentage(completed, total),
		AveragePerDay:      round1(float64(total) / daySpan),
		UpdatedAt:          now.UTC().Format(time.RFC3339),
		PeriodDays:         periodDays,
		ResponseVelocity:   buildVelocity(sorted),
		QuestionInsights:   buildQuestionInsights(sorted, in.Questions),
		LatestResponses:    buildLatestResponses(sorted),
	}
}

// French short month names, matching the fr-FR formatter the dashboard UI
// expects in velocity labels.
var frShortMonths = [12]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

func frShortDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d %s", t.Day(), frShortMonths[t.Month()-1])
}

// buildVelocity counts responses per submission date. Responses without a
// submission timestamp contribute to totals but not to this series.
func buildVelocity(responses []survey.RawSurveyResponse) []survey.TrendPoint {
	counts := map[string]int{}
	for _, r := range responses {
		if len(r.SubmittedAt) < 10 {
			continue
		}
		counts[r.SubmittedAt[:10]]++
	}

	dates := make([]string, 0, len(counts))
	for date := range counts {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	points := make([]survey.TrendPoint, 0, len(dates))
	for _, date := range dates {
		points = append(points, survey.TrendPoint{
			Date:  date,
			Count: counts[date],
			Label: frShortDate(date),
		})
	}
	return points
}

func buildQuestionInsights(responses []survey.RawSurveyResponse, questions []survey.QuestionMeta) []survey.QuestionInsight {
	buckets := map[string][]any{}
	var fallbackOrder []string
	fallbackMeta := map[string]survey.QuestionMeta{}

	for _, r := range responses {
		for _, a := range r.Answers {
			if _, seen := buckets[a.QuestionID]; !seen {
				fallbackOrder = append(fallbackOrder, a.QuestionID)
				fallbackMeta[a.QuestionID] = survey.QuestionMeta{
					ID:    a.QuestionID,
					Title: a.QuestionTitle,
					Type:  a.QuestionType,
				}
			}
			buckets[a.QuestionID] = append(buckets[a.QuestionID], a.Value)
		}
	}

	ordered := questions
	if len(ordered) == 0 {
		ordered = make([]survey.QuestionMeta, 0, len(fallbackOrder))
		for _, id := range fallbackOrder {
			meta := fallbackMeta[id]
			if meta.Title == "" {
				meta.Title = id
			}
			if meta.Type == "" {
				meta.Type = survey.Unknown
			}
			ordered = append(ordered, meta)
		}
	}

	insights := make([]survey.QuestionInsight, 0, len(ordered))
	for _, q := range ordered {
		values := buckets[q.ID]
		insight := survey.QuestionInsight{
			QuestionID: q.ID,
			Title:      q.Title,
			Type:       q.Type,
			SampleSize: len(values),
		}

		switch q.Type {
		case survey.SingleChoice, survey.MultipleChoice:
			insight.Options = buildOptions(values, q.Choices, len(values))
		case survey.Rating, survey.Number:
			numeric := numericValues(values)
			avg, med := Average(numeric), Median(numeric)
			insight.Average = &avg
			insight.Median = &med
			if q.Type == survey.Rating {
				insight.Scale = q.Scale
				if insight.Scale == 0 {
					insight.Scale = defaultRatingScale
				}
			}
		case survey.Text:
			texts := textValues(values)
			insight.TopWords = TopWords(texts, topWordLimit)
			reverseStrings(texts)
			insight.TopTextAnswers = texts
		}

		insights = append(insights, insight)
	}
	return insights
}

// buildOptions counts observed choice values against the declared choice list.
// Declared choices come first in catalog order (count 0 when unseen); observed
// values outside the declared list are appended in first-seen order rather
// than dropped.
func buildOptions(values []any, declared []survey.Choice, sampleSize int) []survey.OptionStat {
	counts := map[string]int{}
	var observed []string
	for _, label := range flattenChoiceValues(values) {
		key := NormalizeChoiceLabel(label)
		if _, seen := counts[key]; !seen {
			observed = append(observed, key)
		}
		counts[key]++
	}

	choices := declared
	if len(choices) == 0 {
		choices = make([]survey.Choice, 0, len(observed))
		for _, key := range observed {
			choices = append(choices, survey.Choice{Label: key, Key: key})
		}
	}

	denom := sampleSize
	if denom == 0 {
		denom = 1
	}

	options := make([]survey.OptionStat, 0, len(choices))
	declaredKeys := map[string]struct{}{}
	for _, choice := range choices {
		declaredKeys[choice.Key] = struct{}{}
		options = append(options, survey.OptionStat{
			Label:      choice.Label,
			Count:      counts[choice.Key],
			Percentage: SafePercentage(counts[choice.Key], denom),
		})
	}
	for _, key := range observed {
		if _, ok := declaredKeys[key]; ok {
			continue
		}
		options = append(options, survey.OptionStat{
			Label:      key,
			Count:      counts[key],
			Percentage: SafePercentage(counts[key], denom),
		})
	}
	return options
}

// flattenChoiceValues extracts the string form of every observed choice
// value, flattening multiple-choice arrays.
func flattenChoiceValues(values []any) []string {
	var out []string
	for _, v := range values {
		switch val := v.(type) {
		case string:
			out = append(out, val)
		case []string:
			out = append(out, val...)
		case []any:
			for _, el := range val {
				if s, ok := el.(string); ok {
					out = append(out, s)
				} else if el != nil {
					out = append(out, fmt.Sprint(el))
				}
			}
		}
	}
	return out
}

// numericValues coerces values to floats, dropping anything non-finite.
func numericValues(values []any) []float64 {
	var out []float64
	for _, v := range values {
		var f float64
		switch val := v.(type) {
		case float64:
			f = val
		case int:
			f = float64(val)
		case string:
			parsed, err := strconv.ParseFloat(val, 64)
			if err != nil {
				continue
			}
			f = parsed
		default:
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// textValues keeps non-empty string values in bucket (submission) order.
func textValues(values []any) []string {
	var out []string
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func reverseStrings(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func buildLatestResponses(sorted []survey.RawSurveyResponse) []survey.LatestResponse {
	start := len(sorted) - latestResponseMax
	if start < 0 {
		start = 0
	}
	recent := sorted[start:]

	out := make([]survey.LatestResponse, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		r := recent[i]
		previews := r.Answers
		if len(previews) > answerPreviewLimit {
			previews = previews[:answerPreviewLimit]
		}
		latest := survey.LatestResponse{
			ID:             r.ID,
			SubmittedAt:    r.SubmittedAt,
			Status:         r.Status,
			AnswersPreview: make([]survey.AnswerPreview, 0, len(previews)),
		}
		for _, a := range previews {
			latest.AnswersPreview = append(latest.AnswersPreview, survey.AnswerPreview{
				Question: a.QuestionTitle,
				Value:    FormatAnswerValue(a.Value),
			})
		}
		out = append(out, latest)
	}
	return out
}

// FormatAnswerValue renders an answer value for display: arrays joined with
// ", ", numbers without trailing zeros, nil as empty.
func FormatAnswerValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, el := range v {
			parts = append(parts, FormatAnswerValue(el))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
