package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.PageCreated("birthday")
	m.PageCreated("birthday")
	m.ViewLogged()
	m.ViewLogFailed()
	m.ResponseSaved()
	m.InboxReload("skipped")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pagesCreated.WithLabelValues("birthday")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.viewsLogged))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.viewLogFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.responsesSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inboxReloads.WithLabelValues("skipped")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.PageCreated("memory")
		m.ViewLogged()
		m.ViewLogFailed()
		m.ResponseSaved()
		m.InboxReload("ok")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ResponseSaved()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "emopages_responses_saved_total 1")
}
