package metrics

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	prometheus_metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	ginmiddleware "github.com/slok/go-http-metrics/middleware/gin"
)

const namespace = "restaurant"

type Service struct {
	Registry   *prometheus.Registry
	middleware middleware.Middleware

	OrdersCreated       *prometheus.CounterVec
	OrderTransitions    *prometheus.CounterVec
	PaymentsRecorded    *prometheus.CounterVec
	InvitationsSent     prometheus.Counter
	InvitationsAccepted prometheus.Counter
	PlanLimitHits       *prometheus.CounterVec
}

func NewService() *Service {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Service{
		Registry: reg,
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders created, by source (qr|pos)",
		}, []string{"source"}),
		OrderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status transitions, by target status",
		}, []string{"status"}),
		PaymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payments recorded, by method",
		}, []string{"method"}),
		InvitationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_sent_total",
			Help:      "Staff invitations created or resent",
		}),
		InvitationsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_accepted_total",
			Help:      "Staff invitations accepted",
		}),
		PlanLimitHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_limit_hits_total",
			Help:      "Requests rejected by plan limits or missing features",
		}, []string{"kind"}),
	}

	reg.MustRegister(s.OrdersCreated, s.OrderTransitions, s.PaymentsRecorded,
		s.InvitationsSent, s.InvitationsAccepted, s.PlanLimitHits)

	s.middleware = middleware.New(middleware.Config{
		Service:            namespace,
		DisableMeasureSize: true,
		Recorder: prometheus_metrics.NewRecorder(prometheus_metrics.Config{
			Registry:        reg,
			DurationBuckets: []float64{.01, .05, .1, .25, .5, 1, 2.5},
		}),
	})

	return s
}

// HTTPMiddleware records per-route latency and status codes.
func (s *Service) HTTPMiddleware() gin.HandlerFunc {
	return ginmiddleware.Handler("", s.middleware)
}

func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})
}

// Default is replaced in main; handlers and tests use it directly.
var Default = NewService()
