package ingest

import (
	"context"
	"fmt"
	"log"
	"sort"

	"surveypulse/api/internal/catalog"
	"surveypulse/api/internal/survey"
	"surveypulse/api/internal/upstream"
)

// BundleStore is the slice of the durable cache the reconciler needs. A nil
// store disables caching; the sync then fetches every respondent.
type BundleStore interface {
	SaveBundle(ctx context.Context, collectorID string, bundle survey.RawDataBundle) error
	LatestBundle(ctx context.Context, collectorID string) (*survey.RawDataBundle, error)
}

// Syncer runs the incremental sync: collector ids minus cached ids, fetch and
// transform only the delta, merge, persist. Respondent records are immutable
// once submitted upstream, so cached copies are trusted and API calls stay
// bounded by the number of new respondents.
type Syncer struct {
	client      *upstream.Client
	catalogs    *catalog.Builder
	store       BundleStore
	collectorID string
}

func NewSyncer(client *upstream.Client, catalogs *catalog.Builder, store BundleStore, collectorID string) *Syncer {
	return &Syncer{client: client, catalogs: catalogs, store: store, collectorID: collectorID}
}

// Result is one completed sync: the merged canonical bundle plus the ordered
// question metadata the aggregation engine needs.
type Result struct {
	Bundle       survey.RawDataBundle
	Questions    []survey.QuestionMeta
	NewResponses int
}

// Sync reconciles the upstream respondent list against the cached bundle.
// Per-respondent fetch failures are logged and skipped; only collector and
// survey lookup failures abort the sync.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	collector, err := s.client.Collector(ctx, s.collectorID)
	if err != nil {
		return Result{}, fmt.Errorf("fetch collector %s: %w", s.collectorID, err)
	}

	surveys, err := s.client.Surveys(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch surveys: %w", err)
	}
	var src *upstream.Survey
	for i := range surveys {
		for _, cid := range surveys[i].Collectors {
			if cid == s.collectorID {
				src = &surveys[i]
				break
			}
		}
		if src != nil {
			break
		}
	}
	if src == nil {
		return Result{}, fmt.Errorf("no survey found containing collector %s", s.collectorID)
	}

	details := survey.SurveyDetails{
		ID:          src.ID,
		Title:       src.Title,
		Description: src.Description,
		CreatedAt:   src.CreatedAt,
	}

	cat := s.catalogs.QuestionMap(ctx, *src)

	var cachedResponses []survey.RawSurveyResponse
	if s.store != nil {
		cached, err := s.store.LatestBundle(ctx, s.collectorID)
		if err != nil {
			log.Printf("sync: cached bundle unavailable, fetching all respondents: %v", err)
		} else if cached != nil {
			cachedResponses = cached.Responses
		}
	}

	known := make(map[string]struct{}, len(cachedResponses))
	for _, r := range cachedResponses {
		known[r.ID] = struct{}{}
	}
	var newIDs []string
	for _, id := range collector.Respondents {
		if _, ok := known[id]; !ok {
			newIDs = append(newIDs, id)
		}
	}
	log.Printf("sync: %d respondents upstream, %d cached, %d to fetch",
		len(collector.Respondents), len(cachedResponses), len(newIDs))

	respondents := upstream.Batch(ctx, s.client, newIDs, "respondent", s.client.Respondent)

	merged := make([]survey.RawSurveyResponse, 0, len(cachedResponses)+len(respondents))
	merged = append(merged, cachedResponses...)
	for _, rec := range respondents {
		merged = append(merged, TransformRespondent(rec, cat))
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SubmittedTime().After(merged[j].SubmittedTime())
	})

	bundle := survey.RawDataBundle{Survey: details, Responses: merged}

	// An unchanged set is not re-persisted.
	if len(respondents) > 0 && s.store != nil {
		if err := s.store.SaveBundle(ctx, s.collectorID, bundle); err != nil {
			log.Printf("sync: persist bundle: %v", err)
		}
	}

	return Result{
		Bundle:       bundle,
		Questions:    cat.Ordered(),
		NewResponses: len(respondents),
	}, nil
}
