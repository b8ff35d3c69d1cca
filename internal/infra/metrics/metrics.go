package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Updates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "toolbot_updates_total",
		Help: "Inbound Telegram updates by kind.",
	}, []string{"kind"})

	DialogTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "toolbot_dialog_transitions_total",
		Help: "Dialog state transitions by flow and resulting state.",
	}, []string{"flow", "state"})

	ValidationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "toolbot_validation_errors_total",
		Help: "Rejected user inputs by flow.",
	}, []string{"flow"})

	BookingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "toolbot_bookings_created_total",
		Help: "Bookings persisted by the booking dialog.",
	})

	NotifyFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "toolbot_notify_failures_total",
		Help: "Notifications that could not be delivered.",
	})

	ExpiredDialogs = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "toolbot_dialogs_expired_total",
		Help: "Idle dialog sessions removed by the sweeper.",
	})
)

func init() {
	prometheus.MustRegister(Updates, DialogTransitions, ValidationErrors, BookingsCreated, NotifyFailures, ExpiredDialogs)
}
