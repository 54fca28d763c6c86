package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	notificationsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tasklane_notifications_created_total",
		Help: "Total number of in-app notifications created",
	})
	emailLogsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tasklane_email_notifications_recorded_total",
		Help: "Total number of email notifications queued for delivery",
	})
	emailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tasklane_email_notifications_sent_total",
		Help: "Email notification delivery attempts by result",
	}, []string{"result"})
	storageCopiesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tasklane_storage_object_copies_total",
		Help: "Object storage copies performed by data migrations, by result",
	}, []string{"result"})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry prometheus.Registerer) {
	registry.MustRegister(notificationsCreatedTotal, emailLogsRecordedTotal, emailsSentTotal, storageCopiesTotal)
}

// IncNotificationCreated increments the in-app notification counter.
func IncNotificationCreated() { notificationsCreatedTotal.Inc() }

// IncEmailLogRecorded increments the queued email counter.
func IncEmailLogRecorded() { emailLogsRecordedTotal.Inc() }

// IncEmailSent records a delivery attempt; ok selects the "sent" or "failed" label.
func IncEmailSent(ok bool) { emailsSentTotal.WithLabelValues(result(ok)).Inc() }

// IncStorageCopy records an object copy; ok selects the "copied" or "failed" label.
func IncStorageCopy(ok bool) {
	if ok {
		storageCopiesTotal.WithLabelValues("copied").Inc()
		return
	}
	storageCopiesTotal.WithLabelValues("failed").Inc()
}

func result(ok bool) string {
	if ok {
		return "sent"
	}
	return "failed"
}
