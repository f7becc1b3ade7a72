// Package survey defines the canonical data model shared by the sync
// pipeline, the aggregation engine, and the cache layer.
package survey

// QuestionType classifies a question for aggregation purposes.
type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	Rating         QuestionType = "rating"
	Text           QuestionType = "text"
	Number         QuestionType = "number"
	Unknown        QuestionType = "unknown"
)

// Choice is one declared answer option. Key is the normalized form of Label
// (trimmed, lowercased, whitespace collapsed) and is the stable grouping key;
// Label is display text.
type Choice struct {
	Label string `json:"label"`
	Key   string `json:"key"`
}

// QuestionMeta is the catalog entry for one question. Scale is the declared
// maximum for rating questions (defaults to 5 when upstream omits it).
type QuestionMeta struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Type    QuestionType `json:"type"`
	Choices []Choice     `json:"choices,omitempty"`
	Scale   int          `json:"scale,omitempty"`
}

// RawAnswer is one answered question within a response. Value is one of
// string, float64, []any (of strings), or nil. Immutable once produced.
type RawAnswer struct {
	QuestionID    string       `json:"question_id"`
	QuestionTitle string       `json:"question_title"`
	QuestionType  QuestionType `json:"question_type,omitempty"`
	Value         any          `json:"value"`
}

// Response status values.
const (
	StatusComplete  = "complete"
	StatusPartial   = "partial"
	StatusAbandoned = "abandoned"
)

// RawSurveyResponse is one respondent's normalized record. ID is the stable
// respondent identifier and the dedup key across merges. Timestamps are
// RFC3339 strings as delivered by the upstream API.
type RawSurveyResponse struct {
	ID          string      `json:"id"`
	Status      string      `json:"status,omitempty"`
	SubmittedAt string      `json:"submitted_at,omitempty"`
	StartedAt   string      `json:"started_at,omitempty"`
	Answers     []RawAnswer `json:"answers"`
}

// SurveyDetails is survey-level metadata, fetched once per sync.
type SurveyDetails struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// RawDataBundle is the unit persisted to the durable cache. Responses carry
// no duplicate ids; order is not significant (re-sorted on read).
type RawDataBundle struct {
	Survey    SurveyDetails       `json:"survey"`
	Responses []RawSurveyResponse `json:"responses"`
}

// TrendPoint is one day in the response velocity series.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Label string `json:"label,omitempty"`
}

// OptionStat is one choice bucket in a choice-question insight.
type OptionStat struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// WordCount is one entry in a text-question word frequency list.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// QuestionInsight is the aggregated view of one question. Exactly one of
// Options, Average/Median, or TopTextAnswers/TopWords is populated, selected
// by Type; unknown types carry only SampleSize.
type QuestionInsight struct {
	QuestionID     string       `json:"questionId"`
	Title          string       `json:"title"`
	Type           QuestionType `json:"type"`
	SampleSize     int          `json:"sampleSize"`
	Scale          int          `json:"scale,omitempty"`
	Options        []OptionStat `json:"options,omitempty"`
	Average        *float64     `json:"average,omitempty"`
	Median         *float64     `json:"median,omitempty"`
	TopTextAnswers []string     `json:"topTextAnswers,omitempty"`
	TopWords       []WordCount  `json:"topWords,omitempty"`
}

// AnswerPreview is a short question/value pair shown with a latest response.
type AnswerPreview struct {
	Question string `json:"question"`
	Value    string `json:"value"`
}

// LatestResponse is one recently submitted response with answer previews.
type LatestResponse struct {
	ID             string          `json:"id"`
	SubmittedAt    string          `json:"submittedAt,omitempty"`
	Status         string          `json:"status,omitempty"`
	AnswersPreview []AnswerPreview `json:"answersPreview"`
}

// DashboardData is the derived dashboard projection. It is entirely
// recomputed from a RawDataBundle and treated as a disposable cache artifact.
type DashboardData struct {
	SurveyID           string            `json:"surveyId"`
	SurveyTitle        string            `json:"surveyTitle"`
	SurveyDescription  string            `json:"surveyDescription,omitempty"`
	TotalResponses     int               `json:"totalResponses"`
	CompletedResponses int               `json:"completedResponses"`
	CompletionRate     float64           `json:"completionRate"`
	AveragePerDay      float64           `json:"averagePerDay"`
	UpdatedAt          string            `json:"updatedAt"`
	PeriodDays         int               `json:"periodDays,omitempty"`
	ResponseVelocity   []TrendPoint      `json:"responseVelocity"`
	QuestionInsights   []QuestionInsight `json:"questionInsights"`
	LatestResponses    []LatestResponse  `json:"latestResponses"`
}
