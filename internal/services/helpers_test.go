package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"emo-pages-backend/internal/metrics"
	"emo-pages-backend/internal/models"
	"emo-pages-backend/internal/repository"
	"emo-pages-backend/internal/testutil"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

// countingStore wraps a real store, counting calls and injecting failures
type countingStore struct {
	repository.Store

	creates   atomic.Int32
	logViews  atomic.Int32
	lists     atomic.Int32
	createErr error
	logErr    error
	listErr   error
	saveErr   error
	saveGate  chan struct{}
}

func (s *countingStore) CreatePage(ctx context.Context, page *models.Page) (*models.Page, error) {
	s.creates.Add(1)
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.Store.CreatePage(ctx, page)
}

func (s *countingStore) LogView(ctx context.Context, pageID string) (*models.View, error) {
	s.logViews.Add(1)
	if s.logErr != nil {
		return nil, s.logErr
	}
	return s.Store.LogView(ctx, pageID)
}

func (s *countingStore) SaveResponse(ctx context.Context, pageID, text string) (*models.Response, error) {
	if s.saveGate != nil {
		<-s.saveGate
	}
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return s.Store.SaveResponse(ctx, pageID, text)
}

func (s *countingStore) ListResponsesByPageID(ctx context.Context, pageID string) ([]*models.Response, error) {
	s.lists.Add(1)
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.Store.ListResponsesByPageID(ctx, pageID)
}

type fixture struct {
	store   *countingStore
	pages   *PageService
	anon    *AnonymousService
	clock   *testutil.FakeClock
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, listeners ...ResponseListener) *fixture {
	t.Helper()

	store := &countingStore{Store: testutil.NewStore(t)}
	m := metrics.New()
	clock := testutil.NewFakeClock(testNow)

	pages := NewPageService(store, m)
	pages.clock = clock

	return &fixture{
		store:   store,
		pages:   pages,
		anon:    NewAnonymousService(pages, listeners...),
		clock:   clock,
		metrics: m,
	}
}

// createPage builds and submits a page of the given type
func (f *fixture) createPage(t *testing.T, pageType models.PageType, content map[string]any) *models.Page {
	t.Helper()

	b, err := f.pages.NewBuilder(pageType)
	require.NoError(t, err)
	require.NoError(t, b.SelectTone(models.ToneRomantic))
	require.NoError(t, b.SetContent(content))
	page, err := b.Submit(context.Background())
	require.NoError(t, err)
	return page
}

// counter reads a counter from the registry; labels are name=value pairs
func counter(t *testing.T, m *metrics.Metrics, name string, labels ...string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metricLoop:
		for _, metric := range mf.GetMetric() {
			for i := 0; i+1 < len(labels); i += 2 {
				found := false
				for _, lp := range metric.GetLabel() {
					if lp.GetName() == labels[i] && lp.GetValue() == labels[i+1] {
						found = true
					}
				}
				if !found {
					continue metricLoop
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}
