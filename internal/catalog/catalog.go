// Package catalog resolves a survey's question metadata from its pages and
// components, preserving traversal order, with a time-bounded in-process
// cache keyed by survey id.
package catalog

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"surveypulse/api/internal/survey"
	"surveypulse/api/internal/upstream"
)

const defaultRatingScale = 5

// Catalog is an insertion-ordered map of question metadata. Order is the
// page-then-component traversal order and becomes display order downstream.
type Catalog struct {
	ids  []string
	byID map[string]survey.QuestionMeta
}

func New() *Catalog {
	return &Catalog{byID: map[string]survey.QuestionMeta{}}
}

func (c *Catalog) Add(meta survey.QuestionMeta) {
	if _, exists := c.byID[meta.ID]; !exists {
		c.ids = append(c.ids, meta.ID)
	}
	c.byID[meta.ID] = meta
}

func (c *Catalog) Get(id string) (survey.QuestionMeta, bool) {
	meta, ok := c.byID[id]
	return meta, ok
}

func (c *Catalog) Len() int {
	return len(c.ids)
}

// Ordered returns the catalog entries in traversal order.
func (c *Catalog) Ordered() []survey.QuestionMeta {
	out := make([]survey.QuestionMeta, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Non-question component types that never enter the catalog.
var skipComponentTypes = map[string]struct{}{
	"textZone":  {},
	"image":     {},
	"video":     {},
	"separator": {},
}

var componentQuestionTypes = map[string]survey.QuestionType{
	"choice":    survey.SingleChoice,
	"yesNo":     survey.SingleChoice,
	"multiple":  survey.MultipleChoice,
	"rating":    survey.Rating,
	"rate":      survey.Rating,
	"number":    survey.Number,
	"text":      survey.Text,
	"freeField": survey.Text,
}

func mapQuestionType(componentType string) survey.QuestionType {
	if qt, ok := componentQuestionTypes[componentType]; ok {
		return qt
	}
	return survey.Unknown
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func stripHTML(value string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(value, ""))
}

// Builder fetches and caches question catalogs.
type Builder struct {
	client *upstream.Client
	cache  *Cache
}

func NewBuilder(client *upstream.Client, ttl time.Duration, now func() time.Time) *Builder {
	return &Builder{client: client, cache: NewCache(ttl, now)}
}

// QuestionMap resolves the catalog for one survey. A cache hit for the same
// survey id within the TTL window short-circuits the entire fetch. Per-page
// and per-component fetch failures are logged and skipped.
func (b *Builder) QuestionMap(ctx context.Context, sv upstream.Survey) *Catalog {
	if cached, ok := b.cache.Get(sv.ID); ok {
		log.Printf("catalog: using cached questions for survey %s (%d questions)", sv.ID, cached.Len())
		return cached
	}

	pages := upstream.Batch(ctx, b.client, sv.Pages, "page", b.client.Page)

	var componentIDs []string
	for _, page := range pages {
		componentIDs = append(componentIDs, page.Components...)
	}
	components := upstream.Batch(ctx, b.client, componentIDs, "component", b.client.Component)

	cat := New()
	for _, comp := range components {
		if _, skip := skipComponentTypes[comp.Type]; skip {
			continue
		}

		title := stripHTML(comp.Title)
		if title == "" {
			// Keep the entry; the id is better than dropping the question.
			title = comp.ID
		}

		meta := survey.QuestionMeta{
			ID:    comp.ID,
			Title: title,
			Type:  mapQuestionType(comp.Type),
		}
		for _, choice := range comp.Items.Choices {
			label := stripHTML(choice.Label)
			meta.Choices = append(meta.Choices, survey.Choice{
				Label: label,
				Key:   survey.NormalizeChoiceLabel(label),
			})
		}
		if meta.Type == survey.Rating {
			meta.Scale = comp.Items.Scale
			if meta.Scale == 0 {
				meta.Scale = comp.Scale
			}
			if meta.Scale == 0 {
				meta.Scale = defaultRatingScale
			}
		}
		cat.Add(meta)
	}

	log.Printf("catalog: loaded %d questions for survey %s", cat.Len(), sv.ID)
	b.cache.Put(sv.ID, cat)
	return cat
}
