// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route template, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmogram_http_requests_total",
		Help: "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks handler latency.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filmogram_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"route", "method"})

	// LikeMutations counts like ledger writes by operation and whether they changed state.
	LikeMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmogram_like_mutations_total",
		Help: "Like ledger mutations by operation and result",
	}, []string{"operation", "result"})

	// FriendRequests counts friend requests by outcome.
	FriendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmogram_friend_requests_total",
		Help: "Friend requests by outcome",
	}, []string{"outcome"})

	// FriendRemovals counts friend removals by the state they left behind.
	FriendRemovals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmogram_friend_removals_total",
		Help: "Friend removals by resulting change",
	}, []string{"result"})

	// RankingDuration tracks how long computing the popularity order takes.
	RankingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "filmogram_ranking_duration_seconds",
		Help:    "Popularity ranking computation time in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	CatalogFilms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "filmogram_catalog_films",
		Help: "Number of films in the catalog",
	})

	CatalogLikes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "filmogram_catalog_likes",
		Help: "Number of likes across all films",
	})

	TopFilmLikes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "filmogram_top_film_likes",
		Help: "Like count of the most popular film",
	})
)
