package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slsync_runs_total",
			Help: "Sync runs by terminal outcome",
		},
		[]string{"outcome"}, // ok|failed
	)

	RowsUpserted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "slsync_rows_upserted_total",
			Help: "Account rows upserted into the mirror table",
		},
	)

	PagesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "slsync_pages_fetched_total",
			Help: "Pages retrieved from the Smartlead API",
		},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		SyncRunsTotal,
		RowsUpserted,
		PagesFetched,
	)
}
