package alert

import "github.com/prometheus/client_golang/prometheus"

var (
	alertsUpserted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sais_alerts_upserted_total",
		Help: "Alerts created or refreshed by the classifier, by type.",
	}, []string{"type"})

	refreshRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sais_alert_refresh_runs_total",
		Help: "Classifier refresh invocations.",
	})
)

func init() {
	prometheus.MustRegister(alertsUpserted, refreshRuns)
}
