package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	promotionsTotal     prometheus.Counter
	demotionsTotal      prometheus.Counter
	blockedQuorumsTotal prometheus.Counter
}

func newMetrics(registry *prometheus.Registry) *metrics {
	factory := promauto.With(registry)
	return &metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kindmesh_http_requests_total",
				Help: "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kindmesh_http_request_duration_seconds",
				Help:    "HTTP request duration by route and method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		promotionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "kindmesh_promotions_total",
			Help: "Accounts promoted to admin",
		}),
		demotionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "kindmesh_demotions_total",
			Help: "Admins demoted by quorum",
		}),
		blockedQuorumsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "kindmesh_blocked_quorums_total",
			Help: "Demotion quorums withheld by the minimum-admin floor",
		}),
	}
}
