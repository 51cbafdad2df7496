// Package metrics содержит prometheus-счётчики бота.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysesServed — количество доставленных пользователям анализов по тарифу.
	AnalysesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_analyses_served_total",
		Help: "Number of analyses delivered to users by tier.",
	}, []string{"tier"})

	// EntitlementGrants — количество выдач доступа по платёжному каналу.
	EntitlementGrants = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_entitlement_grants_total",
		Help: "Number of entitlement grants by payment rail.",
	}, []string{"rail"})

	// AlertsPublished — количество заданий рассылки, опубликованных в очередь.
	AlertsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_alerts_published_total",
		Help: "Number of alert jobs published to the delivery queue.",
	})

	// AlertsSent — количество доставленных сообщений рассылки.
	AlertsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_alerts_sent_total",
		Help: "Number of alert messages delivered to recipients.",
	})

	// AlertsFailed — количество получателей, пропущенных из-за ошибки доставки.
	AlertsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_alerts_failed_total",
		Help: "Number of recipients skipped because delivery failed.",
	})
)
