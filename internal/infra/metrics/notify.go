package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		listingsFetchedTotal,
		listingsNewTotal,
		deliveriesTotal,
		fetchFailuresTotal,
		cycleDuration,
	)
}

var (
	listingsFetchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hhbot_listings_fetched_total",
			Help: "Listings returned by the job source, labeled by position.",
		},
		[]string{"position"},
	)

	listingsNewTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hhbot_listings_new_total",
			Help: "Listings not present in the previous snapshot, labeled by position.",
		},
		[]string{"position"},
	)

	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hhbot_deliveries_total",
			Help: "Notification delivery attempts, labeled by outcome.",
		},
		[]string{"status"}, // 'delivered', 'blocked', 'transient', 'fatal'
	)

	fetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hhbot_fetch_failures_total",
			Help: "Positions skipped in a cycle because the fetch failed.",
		},
		[]string{"position"},
	)

	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hhbot_notify_cycle_duration_seconds",
			Help:    "Wall time of a full notify cycle.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
)

func AddListingsFetched(position string, n int) {
	listingsFetchedTotal.WithLabelValues(norm(position)).Add(float64(n))
}

func AddListingsNew(position string, n int) {
	listingsNewTotal.WithLabelValues(norm(position)).Add(float64(n))
}

func IncDelivery(status string) {
	deliveriesTotal.WithLabelValues(norm(status)).Inc()
}

func IncFetchFailure(position string) {
	fetchFailuresTotal.WithLabelValues(norm(position)).Inc()
}

func ObserveCycle(d time.Duration) {
	cycleDuration.Observe(d.Seconds())
}
