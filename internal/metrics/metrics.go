package metrics

import (
	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "user_sync"

// SyncMetrics holds the counters updated by sync runs and group checks.
// A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	Runs               *prometheus.CounterVec
	UsersCreated       prometheus.Counter
	UsersUpdated       prometheus.Counter
	EntriesSkipped     prometheus.Counter
	LinksCreated       prometheus.Counter
	GroupsCreated      prometheus.Counter
	GroupCheckFailures prometheus.Counter
}

// NewSyncMetrics creates the counters and registers them with reg.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	factory := promauto.With(reg)

	return &SyncMetrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Roster synchronisation runs by result.",
		}, []string{"result"}),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Users created from the roster.",
		}),
		UsersUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_updated_total",
			Help:      "Existing users updated from the roster.",
		}),
		EntriesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_skipped_total",
			Help:      "Roster entries outside the allowed domains.",
		}),
		LinksCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_links_created_total",
			Help:      "User to linkage group links created.",
		}),
		GroupsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_created_total",
			Help:      "Groups created by the consistency check.",
		}),
		GroupCheckFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_check_failures_total",
			Help:      "Groups the consistency check failed to ensure.",
		}),
	}
}

// ObserveRun records the outcome of a sync run.
func (m *SyncMetrics) ObserveRun(report *models.SyncReport, err error) {
	if m == nil {
		return
	}

	if err != nil {
		m.Runs.WithLabelValues("failure").Inc()
	} else {
		m.Runs.WithLabelValues("success").Inc()
	}

	// Partial progress is still committed on failure
	if report != nil {
		m.UsersCreated.Add(float64(report.Created))
		m.UsersUpdated.Add(float64(report.Updated))
		m.EntriesSkipped.Add(float64(report.Skipped))
		m.LinksCreated.Add(float64(report.LinksCreated))
	}
}

// ObserveGroupCheck records the outcome of a group consistency check.
func (m *SyncMetrics) ObserveGroupCheck(created, failed int) {
	if m == nil {
		return
	}
	m.GroupsCreated.Add(float64(created))
	m.GroupCheckFailures.Add(float64(failed))
}
