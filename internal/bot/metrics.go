package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	MessagesProcessed      prometheus.Counter
	CallbacksProcessed     prometheus.Counter
	ErrorsTotal            prometheus.Counter
	RegistrationsCompleted prometheus.Counter
	ReceiptsSubmitted      prometheus.Counter
	PaymentsAdjudicated    *prometheus.CounterVec
	SubscriptionChecks     *prometheus.CounterVec
	UpdateProcessingTime   prometheus.Histogram
}

// NewMetrics создает новые метрики
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_messages_processed_total",
			Help: "Total number of messages processed",
		}),
		CallbacksProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_callbacks_processed_total",
			Help: "Total number of callback queries processed",
		}),
		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of handler errors and panics",
		}),
		RegistrationsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_registrations_completed_total",
			Help: "Total number of completed registrations",
		}),
		ReceiptsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_receipts_submitted_total",
			Help: "Total number of payment receipts submitted",
		}),
		PaymentsAdjudicated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_payments_adjudicated_total",
			Help: "Total number of admin payment decisions",
		}, []string{"decision"}),
		SubscriptionChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_subscription_checks_total",
			Help: "Total number of channel subscription checks",
		}, []string{"result"}),
		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
