package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecipientsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipients_created_total",
			Help: "Total number of recipients registered",
		},
	)

	NotificationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications accepted for delivery",
		},
	)

	// NotificationsRetriedTotal counts manual retries requested through the API.
	NotificationsRetriedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_retried_total",
			Help: "Total number of manual notification retries",
		},
	)

	// NotificationSubmitFailuresTotal counts notifications stored but not
	// queued; the sweeper picks these up.
	NotificationSubmitFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_submit_failures_total",
			Help: "Total number of notifications persisted but not queued",
		},
	)

	// DirectSendsTotal counts one-shot sends that bypass persistence.
	DirectSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_direct_sends_total",
			Help: "Total number of one-shot sends by channel and result",
		},
		[]string{"channel", "result"},
	)
)

func RecordRecipientCreated() {
	RecipientsCreatedTotal.Inc()
}

func RecordNotificationCreated(queued bool) {
	NotificationsCreatedTotal.Inc()
	if !queued {
		NotificationSubmitFailuresTotal.Inc()
	}
}

func RecordNotificationRetried() {
	NotificationsRetriedTotal.Inc()
}

func RecordDirectSend(channel string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	DirectSendsTotal.WithLabelValues(channel, result).Inc()
}
