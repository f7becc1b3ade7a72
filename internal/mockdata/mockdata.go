// Package mockdata generates a structurally valid survey bundle so the
// aggregation engine has input when upstream credentials are absent or the
// live fetch fails.
package mockdata

import (
	"fmt"
	"math/rand"
	"time"

	"surveypulse/api/internal/survey"
)

const defaultResponseCount = 160

func withChoices(labels ...string) []survey.Choice {
	choices := make([]survey.Choice, 0, len(labels))
	for _, label := range labels {
		choices = append(choices, survey.Choice{
			Label: label,
			Key:   survey.NormalizeChoiceLabel(label),
		})
	}
	return choices
}

// Questions returns the fixed mock catalog: one question per analyzable type.
func Questions() []survey.QuestionMeta {
	return []survey.QuestionMeta{
		{
			ID:    "q1",
			Title: "Comment avez-vous découvert notre questionnaire ?",
			Type:  survey.SingleChoice,
			Choices: withChoices(
				"Email", "Réseaux sociaux", "Site web", "Recommandation",
			),
		},
		{
			ID:    "q2",
			Title: "Quelle est votre satisfaction globale ?",
			Type:  survey.Rating,
			Scale: 5,
		},
		{
			ID:    "q3",
			Title: "Qu'aimeriez-vous améliorer ?",
			Type:  survey.Text,
		},
		{
			ID:    "q4",
			Title: "Quelles fonctionnalités utilisez-vous ?",
			Type:  survey.MultipleChoice,
			Choices: withChoices(
				"Rapports", "Export CSV", "Notifications", "API",
			),
		},
	}
}

var improvements = []string{
	"Plus d'automatisation",
	"UI plus rapide",
	"Meilleure intégration API",
	"Export personnalisé",
	"Segmentations avancées",
	"Améliorer la collaboration",
	"Notifications plus fines",
}

// Survey returns the mock survey details.
func Survey(now time.Time) survey.SurveyDetails {
	return survey.SurveyDetails{
		ID:          "mock-survey",
		Title:       "Baromètre satisfaction",
		Description: "Données générées pour travailler sans clé API.",
		CreatedAt:   now.AddDate(0, 0, -60).UTC().Format(time.RFC3339),
	}
}

// GenerateResponses produces count responses spread over the trailing 30
// days. The rng is injectable so tests can pin the output.
func GenerateResponses(count int, now time.Time, rng *rand.Rand) []survey.RawSurveyResponse {
	if count <= 0 {
		count = defaultResponseCount
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(now.UnixNano()))
	}
	questions := Questions()
	q1, q2, q3, q4 := questions[0], questions[1], questions[2], questions[3]

	responses := make([]survey.RawSurveyResponse, 0, count)
	for i := 0; i < count; i++ {
		submitted := now.Add(-time.Duration(rng.Int63n(int64(30 * 24 * time.Hour))))

		status := survey.StatusComplete
		if rng.Float64() < 0.1 {
			status = survey.StatusPartial
		}

		var features []any
		for _, choice := range q4.Choices {
			if rng.Float64() > 0.4 && len(features) < 3 {
				features = append(features, choice.Label)
			}
		}

		improvement := improvements[rng.Intn(len(improvements))]
		if rng.Float64() > 0.5 {
			improvement += ", " + improvements[rng.Intn(len(improvements))]
		}

		responses = append(responses, survey.RawSurveyResponse{
			ID:          fmt.Sprintf("mock-%d", i),
			Status:      status,
			SubmittedAt: submitted.UTC().Format(time.RFC3339),
			Answers: []survey.RawAnswer{
				{
					QuestionID:    q1.ID,
					QuestionTitle: q1.Title,
					QuestionType:  survey.SingleChoice,
					Value:         q1.Choices[rng.Intn(len(q1.Choices))].Label,
				},
				{
					QuestionID:    q2.ID,
					QuestionTitle: q2.Title,
					QuestionType:  survey.Rating,
					Value:         float64(1 + rng.Intn(q2.Scale)),
				},
				{
					QuestionID:    q3.ID,
					QuestionTitle: q3.Title,
					QuestionType:  survey.Text,
					Value:         improvement,
				},
				{
					QuestionID:    q4.ID,
					QuestionTitle: q4.Title,
					QuestionType:  survey.MultipleChoice,
					Value:         features,
				},
			},
		})
	}
	return responses
}

// Payload is the full fallback bundle: survey, responses, and catalog.
type Payload struct {
	Survey    survey.SurveyDetails
	Responses []survey.RawSurveyResponse
	Questions []survey.QuestionMeta
}

// NewPayload builds the default mock payload.
func NewPayload(now time.Time) Payload {
	return Payload{
		Survey:    Survey(now),
		Responses: GenerateResponses(defaultResponseCount, now, nil),
		Questions: Questions(),
	}
}
