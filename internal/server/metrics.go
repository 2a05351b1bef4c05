package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/vocab"
)

// metrics uses its own registry so several servers can live in one process.
type metrics struct {
	registry    *prometheus.Registry
	latency     *prometheus.HistogramVec
	queries     *prometheus.CounterVec
	discoveries *prometheus.CounterVec
	rateLimited prometheus.Counter
}

func newMetrics(store *vocab.Store) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alchemy_query_duration_seconds",
			Help:    "Latency of word queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alchemy_queries_total",
			Help: "Word queries by operation and outcome",
		}, []string{"operation", "status"}),
		discoveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alchemy_discoveries_total",
			Help: "Queries that earned a player a point",
		}, []string{"operation"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alchemy_rate_limited_total",
			Help: "Query requests rejected by the per-player rate limit",
		}),
	}
	vocabularySize := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "alchemy_vocabulary_words",
		Help: "Words in the loaded vocabulary, 0 before the first query",
	}, func() float64 {
		if store == nil {
			return 0
		}
		return float64(store.Stats().Words)
	})
	m.registry.MustRegister(
		m.latency,
		m.queries,
		m.discoveries,
		m.rateLimited,
		vocabularySize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) observe(op models.Operation, start time.Time, resp *models.QueryResponse, err error) {
	status := "success"
	if err != nil {
		switch statusFor(err) {
		case http.StatusNotFound:
			status = "not_found"
		case http.StatusBadRequest:
			status = "invalid"
		case http.StatusServiceUnavailable:
			status = "unavailable"
		default:
			status = "error"
		}
	}
	m.latency.WithLabelValues(string(op), status).Observe(time.Since(start).Seconds())
	m.queries.WithLabelValues(string(op), status).Inc()
	if resp != nil && resp.Discovery {
		m.discoveries.WithLabelValues(string(op)).Inc()
	}
}
