package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	TransitionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hospitalhub",
		Name:      "appointment_transitions_total",
		Help:      "Committed appointment status transitions.",
	}, []string{"from", "to"})

	TransitionRejections = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hospitalhub",
		Name:      "appointment_transition_rejections_total",
		Help:      "Rejected appointment status transitions by reason kind.",
	}, []string{"kind"})

	SideEffectFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hospitalhub",
		Name:      "side_effect_failures_total",
		Help:      "Side effects that failed after the primary write committed.",
	}, []string{"kind"})

	BookingsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "hospitalhub",
		Name:      "appointment_bookings_total",
		Help:      "Appointments created.",
	})

	HTTPDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hospitalhub",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Side effect kinds.
const (
	EffectActivity     = "activity"
	EffectNotification = "notification"
	EffectEvent        = "event"
	EffectCache        = "cache"
)

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Middleware observes latency per matched route so path params do not explode the label set.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	}
}
