package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	applicationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "applications_total",
		Help:      "Applications entering each status.",
	}, []string{"status"})

	campaignTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "campaign_transitions_total",
		Help:      "Campaign status transitions.",
	}, []string{"from", "to"})
)
