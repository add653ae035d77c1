// Package metrics defines Prometheus metrics for the notifier, covering
// pipeline runs, report contents and mail delivery.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RunsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "epi_notifier_runs_started_total",
		Help: "Total number of expiration-check runs started",
	}, []string{"trigger"})
	RunsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "epi_notifier_runs_failed_total",
		Help: "Total number of runs aborted by a data-source failure",
	}, []string{"trigger"})
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "epi_notifier_run_duration_seconds",
		Help:    "Duration of one full scan-aggregate-dispatch run",
		Buckets: prometheus.DefBuckets,
	})
	ReportItems = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "epi_notifier_report_items",
		Help:    "Number of expiring assignments per generated report",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
	MailSendSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "epi_notifier_mail_send_success_total",
		Help: "Total number of report mails delivered",
	})
	MailSendFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "epi_notifier_mail_send_failure_total",
		Help: "Total number of report mails that failed to deliver",
	})
)

func init() {
	prometheus.MustRegister(RunsStarted)
	prometheus.MustRegister(RunsFailed)
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(ReportItems)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
}
