package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	ScansStarted    prometheus.Counter
	ScansCompleted  prometheus.Counter
	ScansFailed     prometheus.Counter
	ScansCanceled   prometheus.Counter
	MailsProcessed  prometheus.Counter
	JobEmailsStored prometheus.Counter
	TokensUsed      prometheus.Counter
	TokenRefreshes  prometheus.Counter
	ReauthSignals   prometheus.Counter
	BatchDuration   prometheus.Histogram
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ScansStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobpulse_scans_started_total",
			Help: "Total number of scans created",
		}),
		ScansCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobpulse_scans_completed_total",
			Help: "Total number of scans that finished processing every message",
		}),
		ScansFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobpulse_scans_failed_total",
			Help: "Total number of scans finalized as failed",
		}),
		ScansCanceled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobpulse_scans_canceled_total",
			Help: "Total number of scans canceled by the user",
		}),
		MailsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobpulse_mails_processed_total",
			Help: "Total number of mails fetched and analyzed during scans",
		}),
		JobEmailsStored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobpulse_job_emails_stored_total",
			Help: "Total number of mails classified as job related and stored",
		}),
		TokensUsed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobpulse_analysis_tokens_total",
			Help: "Total number of model tokens consumed by mail analysis",
		}),
		TokenRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobpulse_token_refreshes_total",
			Help: "Total number of OAuth access token refreshes",
		}),
		ReauthSignals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobpulse_reauth_signals_total",
			Help: "Total number of times a user was asked to reconnect their mailbox",
		}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobpulse_scan_batch_duration_seconds",
			Help:    "Time spent processing one scan batch",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
