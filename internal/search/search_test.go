package search

import (
	"testing"

	"surveypulse/api/internal/survey"
)

func testBundle() survey.RawDataBundle {
	return survey.RawDataBundle{
		Survey: survey.SurveyDetails{ID: "s1"},
		Responses: []survey.RawSurveyResponse{
			{
				ID:          "r2",
				SubmittedAt: "2024-03-02T10:00:00Z",
				Answers: []survey.RawAnswer{
					{QuestionID: "q3", QuestionTitle: "Votre avis", QuestionType: survey.Text, Value: "Excellent service client"},
					{QuestionID: "q2", QuestionTitle: "Note", QuestionType: survey.Rating, Value: float64(5)},
				},
			},
			{
				ID:          "r1",
				SubmittedAt: "2024-03-01T10:00:00Z",
				Answers: []survey.RawAnswer{
					{QuestionID: "q3", QuestionTitle: "Votre avis", QuestionType: survey.Text, Value: "Le support est trop lent"},
					{QuestionID: "q4", QuestionTitle: "Vide", QuestionType: survey.Text, Value: ""},
				},
			},
		},
	}
}

func TestEntriesFromBundle(t *testing.T) {
	entries := EntriesFromBundle(testBundle())

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (non-text and empty dropped), got %d", len(entries))
	}
	first := entries[0]
	if first.ID != "r2-q3" {
		t.Errorf("entry id = %s, want responseID-questionID", first.ID)
	}
	if first.Text != "Excellent service client" || first.QuestionTitle != "Votre avis" {
		t.Errorf("entry = %+v", first)
	}
	if first.SubmittedAt != "2024-03-02T10:00:00Z" {
		t.Errorf("SubmittedAt = %s", first.SubmittedAt)
	}
	if entries[1].ResponseID != "r1" {
		t.Errorf("bundle order not preserved: %+v", entries)
	}
}

func TestMemorySearch(t *testing.T) {
	mem := NewMemory()
	mem.Replace(EntriesFromBundle(testBundle()))

	results, total := mem.Search("SERVICE", 10)
	if total != 1 || len(results) != 1 {
		t.Fatalf("total = %d, results = %v", total, results)
	}
	if results[0].ResponseID != "r2" {
		t.Errorf("matched wrong entry: %+v", results[0])
	}

	// Question titles are searchable too.
	results, total = mem.Search("avis", 10)
	if total != 2 {
		t.Errorf("title match total = %d, want 2", total)
	}
	if results[0].ResponseID != "r2" {
		t.Errorf("indexed order not preserved: %+v", results)
	}
}

func TestMemorySearchLimit(t *testing.T) {
	mem := NewMemory()
	mem.Replace(EntriesFromBundle(testBundle()))

	results, total := mem.Search("avis", 1)
	if total != 2 {
		t.Errorf("total = %d, want full match count", total)
	}
	if len(results) != 1 {
		t.Errorf("results = %v, want truncated to limit", results)
	}
}

func TestMemorySearchEmptyQuery(t *testing.T) {
	mem := NewMemory()
	mem.Replace(EntriesFromBundle(testBundle()))

	results, total := mem.Search("   ", 10)
	if total != 0 || len(results) != 0 {
		t.Errorf("blank query matched: total = %d, results = %v", total, results)
	}
	if results == nil {
		t.Error("results must be non-nil for JSON encoding")
	}
}

func TestMemoryReplaceSwapsIndex(t *testing.T) {
	mem := NewMemory()
	mem.Replace([]Entry{{ID: "old", Text: "ancienne réponse"}})
	mem.Replace([]Entry{{ID: "new", Text: "nouvelle réponse"}})

	if _, total := mem.Search("ancienne", 10); total != 0 {
		t.Error("stale entry survived Replace")
	}
	if _, total := mem.Search("nouvelle", 10); total != 1 {
		t.Error("new entry missing after Replace")
	}
}

func TestServiceFallsBackWithoutMeili(t *testing.T) {
	svc := NewService(nil)
	svc.Index(EntriesFromBundle(testBundle()))

	resp := svc.Search("support", 10)
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Query != "support" {
		t.Errorf("Query = %q", resp.Query)
	}
	if resp.Results[0].ResponseID != "r1" {
		t.Errorf("matched wrong entry: %+v", resp.Results[0])
	}
}

func TestServiceNoMatches(t *testing.T) {
	svc := NewService(nil)
	svc.Index(EntriesFromBundle(testBundle()))

	resp := svc.Search("introuvable", 10)
	if resp.Total != 0 {
		t.Errorf("Total = %d, want 0", resp.Total)
	}
	if resp.Results == nil {
		t.Error("Results must be non-nil for JSON encoding")
	}
}
