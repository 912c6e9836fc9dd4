// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moneyrats_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moneyrats_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moneyrats_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moneyrats_rate_limited_total",
		Help: "Requests rejected by the rate limiter, by route.",
	}, []string{"route"})

	ContributionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moneyrats_contributions_total",
		Help: "Accepted savings contributions.",
	})

	ContributedAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moneyrats_contributed_amount_total",
		Help: "Sum of accepted contribution amounts.",
	})

	GroupsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moneyrats_groups_created_total",
		Help: "Groups created.",
	})

	GroupJoinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moneyrats_group_joins_total",
		Help: "Successful group joins.",
	})
)

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginLocked  = "locked"
)
