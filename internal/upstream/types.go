package upstream

// Upstream records are ad hoc JSON with arbitrary extra fields. Only the
// required fields are modeled; unknown fields are tolerated by plain
// json.Unmarshal into these partial shapes.

// Collector holds the respondent id list for one collection channel.
type Collector struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Respondents []string `json:"respondents"`
}

// Survey is survey-level metadata with its collector and page id lists.
type Survey struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CreatedAt   string   `json:"created_at"`
	Collectors  []string `json:"collectors"`
	Pages       []string `json:"pages"`
}

type surveyList struct {
	Data []Survey `json:"data"`
}

// Page carries an ordered component id list.
type Page struct {
	ID         string   `json:"id"`
	Components []string `json:"components"`
}

// ComponentChoice is one declared answer option on a component.
type ComponentChoice struct {
	Label string `json:"label"`
}

// ComponentItems is the nested option/scale block of a component.
type ComponentItems struct {
	Choices []ComponentChoice `json:"choices"`
	Scale   int               `json:"scale"`
}

// Component is one page component; non-question components (text blocks,
// images, video, separators) share this shape.
type Component struct {
	ID    string         `json:"id"`
	Type  string         `json:"type"`
	Title string         `json:"title"`
	Items ComponentItems `json:"items"`
	Scale int            `json:"scale"`
}

// RespondentAnswer is one answered question on a respondent record. Choices
// holds the raw answer payload: a 1-based index for single-choice questions,
// several indices for multiple-choice, or a literal value otherwise.
type RespondentAnswer struct {
	Choices   []any  `json:"choices"`
	TimeStamp string `json:"timeStamp"`
}

// Respondent is one raw respondent record.
type Respondent struct {
	ID        string                      `json:"id"`
	Complete  bool                        `json:"complete"`
	Questions map[string]RespondentAnswer `json:"questions"`
	CreatedAt string                      `json:"created_at"`
	UpdatedAt string                      `json:"updated_at"`
}
