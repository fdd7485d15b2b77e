// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 支付子系统的核心监控指标。
// fraud 相关计数单独暴露, 方便在告警侧配置更敏感的阈值。
var (
	CapturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rsf",
		Subsystem: "payment",
		Name:      "captures_total",
		Help:      "Capture attempts by resource kind and outcome.",
	}, []string{"kind", "outcome"})

	FraudSignalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rsf",
		Subsystem: "payment",
		Name:      "fraud_signals_total",
		Help:      "Hard-failed captures that look like tampering (resource or amount mismatch).",
	}, []string{"kind", "reason"})

	FreeCompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rsf",
		Subsystem: "payment",
		Name:      "free_completions_total",
		Help:      "Zero-amount completions by resource kind and outcome.",
	}, []string{"kind", "outcome"})

	PromoRedemptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rsf",
		Subsystem: "promotion",
		Name:      "redemptions_total",
		Help:      "Promo code redemption attempts by outcome.",
	}, []string{"outcome"})

	ReconciliationAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rsf",
		Subsystem: "payment",
		Name:      "reconciliation_alerts_total",
		Help:      "Captures that succeeded at the provider but failed to apply to domain state.",
	})
)
