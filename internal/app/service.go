// Package app wires the sync pipeline, the aggregation engine, and the cache
// tiers behind the dashboard entry point.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"surveypulse/api/internal/aggregate"
	"surveypulse/api/internal/config"
	"surveypulse/api/internal/ingest"
	"surveypulse/api/internal/mockdata"
	"surveypulse/api/internal/search"
	"surveypulse/api/internal/survey"
)

// Options selects the dashboard variant. Days restricts the dataset to a
// trailing window; ForceRefresh bypasses the snapshot cache.
type Options struct {
	Days         int
	ForceRefresh bool
}

// Store is the durable cache as the service sees it: bundle history for the
// reconciler plus snapshot history for the read path.
type Store interface {
	ingest.BundleStore
	SaveSnapshot(ctx context.Context, surveyID string, snapshot survey.DashboardData) error
	LatestSnapshot(ctx context.Context, surveyID string) (*survey.DashboardData, error)
	Ping(ctx context.Context) error
}

type syncRunner interface {
	Sync(ctx context.Context) (ingest.Result, error)
}

// Service serves dashboard data from the freshness-gated cache, falling back
// to the full pipeline, a stale snapshot, and finally mock data.
type Service struct {
	cfg    config.Config
	syncer syncRunner
	store  Store // nil when caching is disabled
	search *search.Service
	now    func() time.Time

	mu       sync.Mutex
	memSnap  *survey.DashboardData // in-process snapshot tier
	surveyID string
}

func New(cfg config.Config, syncer syncRunner, store Store, searchSvc *search.Service) *Service {
	return &Service{
		cfg:    cfg,
		syncer: syncer,
		store:  store,
		search: searchSvc,
		now:    time.Now,
	}
}

// GetDashboard is the aggregation entry point. Windowed requests (Days > 0)
// always recompute; snapshots cover only the default window.
func (s *Service) GetDashboard(ctx context.Context, opts Options) (survey.DashboardData, error) {
	if !opts.ForceRefresh && opts.Days == 0 {
		if snap := s.freshSnapshot(ctx); snap != nil {
			return *snap, nil
		}
	}

	dash, err := s.buildFresh(ctx, opts.Days)
	if err == nil {
		return dash, nil
	}
	log.Printf("app: dashboard build failed: %v", err)

	if s.store != nil && opts.Days == 0 {
		if key := s.snapshotKey(ctx); key != "" {
			snap, serr := s.store.LatestSnapshot(ctx, key)
			if serr != nil {
				log.Printf("app: stale snapshot read: %v", serr)
			} else if snap != nil {
				log.Printf("app: serving stale snapshot for survey %s", key)
				return *snap, nil
			}
		}
	}

	log.Printf("app: falling back to mock data")
	return s.buildMock(opts.Days), nil
}

// freshSnapshot checks the in-process tier then the durable tier, returning
// a snapshot younger than the freshness TTL or nil.
func (s *Service) freshSnapshot(ctx context.Context) *survey.DashboardData {
	s.mu.Lock()
	memSnap := s.memSnap
	s.mu.Unlock()
	if memSnap != nil && s.snapshotAge(*memSnap) < s.cfg.SnapshotTTL {
		return memSnap
	}

	if s.store == nil {
		return nil
	}
	key := s.snapshotKey(ctx)
	if key == "" {
		return nil
	}
	snap, err := s.store.LatestSnapshot(ctx, key)
	if err != nil {
		log.Printf("app: snapshot read: %v", err)
		return nil
	}
	if snap == nil {
		return nil
	}
	age := s.snapshotAge(*snap)
	if age >= s.cfg.SnapshotTTL {
		log.Printf("app: snapshot stale (age %s), refreshing", age.Round(time.Second))
		return nil
	}
	s.rememberSnapshot(*snap)
	return snap
}

func (s *Service) snapshotAge(snap survey.DashboardData) time.Duration {
	updated := survey.ParseTime(snap.UpdatedAt)
	if updated.IsZero() {
		// Unparseable timestamp; treat as expired.
		return s.cfg.SnapshotTTL
	}
	return s.now().Sub(updated)
}

// snapshotKey resolves the survey id snapshots are keyed by. Before the
// first sync it is learned from the cached bundle.
func (s *Service) snapshotKey(ctx context.Context) string {
	s.mu.Lock()
	id := s.surveyID
	s.mu.Unlock()
	if id != "" {
		return id
	}

	if !s.cfg.HasUpstreamCredentials() {
		return "mock-survey"
	}
	if s.store == nil {
		return ""
	}
	bundle, err := s.store.LatestBundle(ctx, s.cfg.CollectorID)
	if err != nil || bundle == nil {
		return ""
	}
	s.mu.Lock()
	s.surveyID = bundle.Survey.ID
	s.mu.Unlock()
	return bundle.Survey.ID
}

// buildFresh runs the full pipeline: sync, aggregate, then best-effort
// snapshot persistence and search reindex.
func (s *Service) buildFresh(ctx context.Context, days int) (survey.DashboardData, error) {
	if !s.cfg.HasUpstreamCredentials() {
		log.Printf("app: missing upstream credentials, using mock data")
		return s.buildMock(days), nil
	}

	result, err := s.syncer.Sync(ctx)
	if err != nil {
		return survey.DashboardData{}, err
	}

	dash := aggregate.BuildDashboardData(aggregate.BuildInput{
		Responses: result.Bundle.Responses,
		Survey:    result.Bundle.Survey,
		Questions: result.Questions,
		Days:      days,
		Now:       s.now(),
	})

	if s.search != nil {
		s.search.Index(search.EntriesFromBundle(result.Bundle))
	}

	if days == 0 {
		s.rememberSnapshot(dash)
		s.persistSnapshot(dash)
	}
	return dash, nil
}

func (s *Service) rememberSnapshot(dash survey.DashboardData) {
	s.mu.Lock()
	snap := dash
	s.memSnap = &snap
	s.surveyID = dash.SurveyID
	s.mu.Unlock()
}

// persistSnapshot writes the snapshot fire-and-forget; persistence is
// best-effort and never gates the response.
func (s *Service) persistSnapshot(dash survey.DashboardData) {
	if s.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.SaveSnapshot(ctx, dash.SurveyID, dash); err != nil {
			log.Printf("app: persist snapshot: %v", err)
		}
	}()
}

func (s *Service) buildMock(days int) survey.DashboardData {
	payload := mockdata.NewPayload(s.now())
	return aggregate.BuildDashboardData(aggregate.BuildInput{
		Responses: payload.Responses,
		Survey:    payload.Survey,
		Questions: payload.Questions,
		Days:      days,
		Now:       s.now(),
	})
}

// Search queries indexed free-text answers. Returns an empty response when
// search is not configured.
func (s *Service) Search(query string, limit int) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Entry{}, Query: query}
	}
	return s.search.Search(query, limit)
}

// Ping reports durable cache health. A disabled cache is healthy.
func (s *Service) Ping(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Ping(ctx)
}
