package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	SignupSuccess = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_signup_success_total",
		Help: "Total successful signups",
	})

	LoginSuccess = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_login_success_total",
		Help: "Total successful login attempts",
	})

	LoginFailure = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_login_failure_total",
		Help: "Total failed login attempts",
	}, []string{"reason"})

	MessagesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_posted_total",
		Help: "Total messages successfully posted",
	})

	MessagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_deleted_total",
		Help: "Total messages deleted by their authors",
	})

	FollowChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_follow_changes_total",
		Help: "Follow edges created or removed",
	}, []string{"action"})

	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_like_toggles_total",
		Help: "Like toggles by resulting state",
	}, []string{"result"})

	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_events_consumed_total",
		Help: "Domain events consumed by the event worker",
	}, []string{"type", "outcome"})

	FeedDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "warbler_feed_assembly_duration_seconds",
		Help:    "Time spent assembling home feeds.",
		Buckets: prometheus.DefBuckets,
	})
)

// Instrument records request duration per matched gin route.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// ObserveFeed times fn and records it in FeedDuration.
func ObserveFeed(fn func() error) error {
	timer := prometheus.NewTimer(FeedDuration)
	defer timer.ObserveDuration()
	return fn()
}
