package survey

import "time"

// timestamp layouts seen from the upstream API
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses an upstream timestamp. Empty or unparseable values return
// the zero time, which sorts before any real submission.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SubmittedTime returns the parsed submission time of a response.
func (r RawSurveyResponse) SubmittedTime() time.Time {
	return ParseTime(r.SubmittedAt)
}
