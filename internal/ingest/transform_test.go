package ingest

import (
	"reflect"
	"testing"

	"surveypulse/api/internal/catalog"
	"surveypulse/api/internal/survey"
	"surveypulse/api/internal/upstream"
)

func testCatalog() *catalog.Catalog {
	cat := catalog.New()
	cat.Add(survey.QuestionMeta{
		ID:    "q1",
		Title: "Source",
		Type:  survey.SingleChoice,
		Choices: []survey.Choice{
			{Label: "Email", Key: "email"},
			{Label: "Site web", Key: "site web"},
		},
	})
	cat.Add(survey.QuestionMeta{ID: "q2", Title: "Note", Type: survey.Rating, Scale: 5})
	cat.Add(survey.QuestionMeta{
		ID:    "q3",
		Title: "Fonctionnalités",
		Type:  survey.MultipleChoice,
		Choices: []survey.Choice{
			{Label: "Rapports", Key: "rapports"},
			{Label: "API", Key: "api"},
		},
	})
	return cat
}

func TestTransformRespondentResolvesChoices(t *testing.T) {
	rec := upstream.Respondent{
		ID:       "r1",
		Complete: true,
		Questions: map[string]upstream.RespondentAnswer{
			"q1": {Choices: []any{float64(2)}},
			"q2": {Choices: []any{float64(4)}},
			"q3": {Choices: []any{float64(1), float64(2)}},
		},
		CreatedAt: "2024-03-01T09:00:00Z",
		UpdatedAt: "2024-03-01T09:05:00Z",
	}

	resp := TransformRespondent(rec, testCatalog())

	if resp.ID != "r1" {
		t.Errorf("ID = %s, want r1", resp.ID)
	}
	if resp.Status != survey.StatusComplete {
		t.Errorf("Status = %s, want complete", resp.Status)
	}
	if resp.SubmittedAt != "2024-03-01T09:05:00Z" {
		t.Errorf("SubmittedAt = %s, want updated_at", resp.SubmittedAt)
	}
	if resp.StartedAt != "2024-03-01T09:00:00Z" {
		t.Errorf("StartedAt = %s, want created_at", resp.StartedAt)
	}
	if len(resp.Answers) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(resp.Answers))
	}
	if resp.Answers[0].Value != "Site web" {
		t.Errorf("single choice value = %v, want resolved label", resp.Answers[0].Value)
	}
	if resp.Answers[1].Value != float64(4) {
		t.Errorf("rating value = %v, want raw 4", resp.Answers[1].Value)
	}
	want := []any{"Rapports", "API"}
	if !reflect.DeepEqual(resp.Answers[2].Value, want) {
		t.Errorf("multiple choice value = %v, want %v", resp.Answers[2].Value, want)
	}
}

func TestTransformRespondentAnswersInCatalogOrder(t *testing.T) {
	// q3 answered "before" q1 in the record map; output still follows the catalog.
	rec := upstream.Respondent{
		ID: "r1",
		Questions: map[string]upstream.RespondentAnswer{
			"q3": {Choices: []any{float64(1)}},
			"q1": {Choices: []any{float64(1)}},
		},
	}

	resp := TransformRespondent(rec, testCatalog())

	if len(resp.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(resp.Answers))
	}
	if resp.Answers[0].QuestionID != "q1" || resp.Answers[1].QuestionID != "q3" {
		t.Errorf("answers out of catalog order: %s, %s", resp.Answers[0].QuestionID, resp.Answers[1].QuestionID)
	}
}

func TestTransformRespondentDropsUncataloguedAnswers(t *testing.T) {
	rec := upstream.Respondent{
		ID: "r1",
		Questions: map[string]upstream.RespondentAnswer{
			"q1":      {Choices: []any{float64(1)}},
			"deleted": {Choices: []any{"orphan"}},
		},
	}

	resp := TransformRespondent(rec, testCatalog())

	if len(resp.Answers) != 1 {
		t.Fatalf("expected 1 answer, got %d", len(resp.Answers))
	}
	if resp.Answers[0].QuestionID != "q1" {
		t.Errorf("kept answer = %s, want q1", resp.Answers[0].QuestionID)
	}
}

func TestTransformRespondentOutOfRangeIndexPassesThrough(t *testing.T) {
	rec := upstream.Respondent{
		ID: "r1",
		Questions: map[string]upstream.RespondentAnswer{
			"q1": {Choices: []any{float64(9)}},
		},
	}

	resp := TransformRespondent(rec, testCatalog())

	if resp.Answers[0].Value != float64(9) {
		t.Errorf("unresolvable index = %v, want raw passthrough", resp.Answers[0].Value)
	}
}

func TestTransformRespondentPartialStatusAndFallbackTimestamp(t *testing.T) {
	rec := upstream.Respondent{
		ID:        "r1",
		Complete:  false,
		Questions: map[string]upstream.RespondentAnswer{},
		CreatedAt: "2024-03-01T09:00:00Z",
	}

	resp := TransformRespondent(rec, testCatalog())

	if resp.Status != survey.StatusPartial {
		t.Errorf("Status = %s, want partial", resp.Status)
	}
	if resp.SubmittedAt != "2024-03-01T09:00:00Z" {
		t.Errorf("SubmittedAt = %s, want created_at fallback", resp.SubmittedAt)
	}
	if len(resp.Answers) != 0 {
		t.Errorf("expected no answers, got %d", len(resp.Answers))
	}
}
