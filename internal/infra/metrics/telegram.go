package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscribersRegisteredTotal,
		subscribersRemovedTotal,
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		floodMessagesDeletedTotal,
	)
}

var (
	subscribersRegisteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hhbot_subscribers_registered_total",
			Help: "Total number of new subscribers, labeled by position.",
		},
		[]string{"position"},
	)

	subscribersRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hhbot_subscribers_removed_total",
			Help: "Subscribers removed from the directory, labeled by reason.",
		},
		[]string{"reason"}, // 'unsubscribe', 'blocked'
	)

	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hhbot_telegram_commands_received_total",
			Help: "Counts incoming messages and commands from users.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hhbot_telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	floodMessagesDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hhbot_flood_messages_deleted_total",
			Help: "Unrecognized messages deleted from chats.",
		},
	)
)

func IncSubscriberRegistered(position string) {
	subscribersRegisteredTotal.WithLabelValues(norm(position)).Inc()
}

func IncSubscriberRemoved(reason string) {
	subscribersRemovedTotal.WithLabelValues(norm(reason)).Inc()
}

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncFloodDeleted() {
	floodMessagesDeletedTotal.Inc()
}
