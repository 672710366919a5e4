package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(buildInfo, subscribersGauge, dbConns, operatorCommands)
}

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hhbot_build_info",
			Help: "Always 1; labels carry the running version and commit.",
		},
		[]string{"version", "commit"},
	)

	subscribersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hhbot_subscribers",
			Help: "Subscribers in the directory at the last full listing.",
		},
	)

	dbConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hhbot_db_connections",
			Help: "Subscriber directory connections by state.",
		},
		[]string{"state"}, // total, idle, in_use
	)

	operatorCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hhbot_operator_commands_total",
			Help: "Operator-only commands by outcome.",
		},
		[]string{"command", "status"}, // authorized, unauthorized
	)
)

func SetBuildInfo(version, commit string) { buildInfo.WithLabelValues(version, commit).Set(1) }

func SetSubscribers(n int) { subscribersGauge.Set(float64(n)) }

func SetDBPoolStats(total, idle, inUse int) {
	dbConns.WithLabelValues("total").Set(float64(total))
	dbConns.WithLabelValues("idle").Set(float64(idle))
	dbConns.WithLabelValues("in_use").Set(float64(inUse))
}

func IncOperatorCommand(command, status string) {
	operatorCommands.WithLabelValues(norm(command), norm(status)).Inc()
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
