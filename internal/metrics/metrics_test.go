package metrics

import (
	"errors"
	"testing"

	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRun(t *testing.T) {
	m := NewSyncMetrics(prometheus.NewRegistry())

	m.ObserveRun(&models.SyncReport{Created: 3, Updated: 2, Skipped: 1, LinksCreated: 3}, nil)
	m.ObserveRun(&models.SyncReport{Created: 1}, errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Runs.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Runs.WithLabelValues("failure")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.UsersCreated))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.UsersUpdated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EntriesSkipped))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.LinksCreated))
}

func TestObserveGroupCheck(t *testing.T) {
	m := NewSyncMetrics(prometheus.NewRegistry())

	m.ObserveGroupCheck(2, 1)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.GroupsCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GroupCheckFailures))
}

func TestNilMetrics(t *testing.T) {
	var m *SyncMetrics
	assert.NotPanics(t, func() {
		m.ObserveRun(nil, nil)
		m.ObserveGroupCheck(1, 1)
	})
}
