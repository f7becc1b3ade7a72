package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"surveypulse/api/internal/survey"
	"surveypulse/api/internal/upstream"
)

// componentServer serves two pages whose components cover every mapping the
// builder has to make, counting page fetches for cache assertions.
type componentServer struct {
	mu       sync.Mutex
	pageHits int
	server   *httptest.Server
	client   *upstream.Client
}

func newComponentServer(t *testing.T) *componentServer {
	t.Helper()
	cs := &componentServer{}
	pages := map[string][]string{
		"p1": {"q1", "q2", "skip1"},
		"p2": {"q3", "q4", "q5"},
	}
	components := map[string]map[string]any{
		"q1": {
			"id": "q1", "type": "choice", "title": "<p>Comment nous avez-vous <b>connu</b> ?</p>",
			"items": map[string]any{"choices": []map[string]any{
				{"label": "<span>Email</span>"},
				{"label": "Réseaux   sociaux"},
			}},
		},
		"q2":    {"id": "q2", "type": "rate", "title": "Votre note", "items": map[string]any{"scale": 10}},
		"skip1": {"id": "skip1", "type": "textZone", "title": "Merci de votre participation"},
		"q3":    {"id": "q3", "type": "freeField", "title": "Un commentaire ?"},
		"q4":    {"id": "q4", "type": "rating", "title": "Recommandation"},
		"q5":    {"id": "q5", "type": "matrix", "title": "<i></i>"},
	}
	cs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/pages/"):
			id := strings.TrimPrefix(r.URL.Path, "/pages/")
			cs.mu.Lock()
			cs.pageHits++
			cs.mu.Unlock()
			_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "components": pages[id]})
		case strings.HasPrefix(r.URL.Path, "/components/"):
			id := strings.TrimPrefix(r.URL.Path, "/components/")
			_ = json.NewEncoder(w).Encode(components[id])
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(cs.server.Close)

	cs.client = upstream.NewClient(cs.server.URL, "test-key")
	cs.client.BatchDelay = 0
	return cs
}

func (cs *componentServer) pageFetches() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.pageHits
}

func testSurvey() upstream.Survey {
	return upstream.Survey{ID: "s1", Title: "Satisfaction", Pages: []string{"p1", "p2"}}
}

func TestQuestionMapBuildsOrderedCatalog(t *testing.T) {
	cs := newComponentServer(t)
	builder := NewBuilder(cs.client, time.Minute, nil)

	cat := builder.QuestionMap(context.Background(), testSurvey())

	ordered := cat.Ordered()
	if len(ordered) != 5 {
		t.Fatalf("catalog has %d questions, want 5 (textZone skipped)", len(ordered))
	}
	wantIDs := []string{"q1", "q2", "q3", "q4", "q5"}
	for i, meta := range ordered {
		if meta.ID != wantIDs[i] {
			t.Fatalf("question %d = %s, want %s (traversal order)", i, meta.ID, wantIDs[i])
		}
	}

	q1 := ordered[0]
	if q1.Type != survey.SingleChoice {
		t.Errorf("q1 type = %s, want single_choice", q1.Type)
	}
	if q1.Title != "Comment nous avez-vous connu ?" {
		t.Errorf("q1 title = %q, want HTML stripped", q1.Title)
	}
	if len(q1.Choices) != 2 || q1.Choices[0].Label != "Email" || q1.Choices[0].Key != "email" {
		t.Errorf("q1 choices = %+v", q1.Choices)
	}
	if q1.Choices[1].Key != "réseaux sociaux" {
		t.Errorf("q1 choice key = %q, want normalized", q1.Choices[1].Key)
	}

	if q2 := ordered[1]; q2.Type != survey.Rating || q2.Scale != 10 {
		t.Errorf("q2 = %+v, want rating with declared scale 10", q2)
	}
	if q3 := ordered[2]; q3.Type != survey.Text {
		t.Errorf("q3 type = %s, want text (freeField)", q3.Type)
	}
	if q4 := ordered[3]; q4.Type != survey.Rating || q4.Scale != 5 {
		t.Errorf("q4 = %+v, want rating with default scale 5", q4)
	}
	q5 := ordered[4]
	if q5.Type != survey.Unknown {
		t.Errorf("q5 type = %s, want unknown (unmapped component type)", q5.Type)
	}
	if q5.Title != "q5" {
		t.Errorf("q5 title = %q, want id fallback for empty title", q5.Title)
	}
}

func TestQuestionMapCacheHit(t *testing.T) {
	cs := newComponentServer(t)
	builder := NewBuilder(cs.client, time.Minute, nil)

	first := builder.QuestionMap(context.Background(), testSurvey())
	fetchesAfterFirst := cs.pageFetches()
	second := builder.QuestionMap(context.Background(), testSurvey())

	if cs.pageFetches() != fetchesAfterFirst {
		t.Errorf("cache hit still fetched pages (%d → %d)", fetchesAfterFirst, cs.pageFetches())
	}
	if first != second {
		t.Error("cache hit returned a different catalog instance")
	}
}

func TestQuestionMapCacheExpiry(t *testing.T) {
	cs := newComponentServer(t)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	builder := NewBuilder(cs.client, 15*time.Minute, func() time.Time { return clock })

	builder.QuestionMap(context.Background(), testSurvey())
	fetchesAfterFirst := cs.pageFetches()

	clock = clock.Add(16 * time.Minute)
	builder.QuestionMap(context.Background(), testSurvey())

	if cs.pageFetches() == fetchesAfterFirst {
		t.Error("expired cache entry was served instead of refetched")
	}
}

func TestQuestionMapCacheInvalidatedBySurveyID(t *testing.T) {
	cs := newComponentServer(t)
	builder := NewBuilder(cs.client, time.Minute, nil)

	builder.QuestionMap(context.Background(), testSurvey())
	fetchesAfterFirst := cs.pageFetches()

	other := testSurvey()
	other.ID = "s2"
	builder.QuestionMap(context.Background(), other)

	if cs.pageFetches() == fetchesAfterFirst {
		t.Error("catalog for a different survey was served from cache")
	}
}

func TestCatalogAddAndGet(t *testing.T) {
	cat := New()
	cat.Add(survey.QuestionMeta{ID: "a", Title: "first"})
	cat.Add(survey.QuestionMeta{ID: "b", Title: "second"})
	cat.Add(survey.QuestionMeta{ID: "a", Title: "updated"})

	if cat.Len() != 2 {
		t.Errorf("Len = %d, want 2 (re-add must not duplicate)", cat.Len())
	}
	meta, ok := cat.Get("a")
	if !ok || meta.Title != "updated" {
		t.Errorf("Get(a) = %+v, %v; want updated entry", meta, ok)
	}
	ordered := cat.Ordered()
	if ordered[0].ID != "a" || ordered[1].ID != "b" {
		t.Errorf("re-add changed insertion order: %+v", ordered)
	}
}
